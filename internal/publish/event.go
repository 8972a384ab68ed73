// Package publish hands completed registrations to downstream systems.
package publish

import (
	"fmt"
	"time"

	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/registration"
	"github.com/google/uuid"
)

// EventType names the completed-registration event.
const EventType = "registro.concluido"

// Representative is the representative as published. The password only
// travels as a bcrypt hash; the confirmation is dropped.
type Representative struct {
	FullName     string `json:"nomeRepresentante"`
	NationalID   string `json:"cpf"`
	Email        string `json:"email"`
	Phone        string `json:"telefone"`
	PasswordHash string `json:"senhaHash"`
}

// RegistrationCompleted is published once per finished registration.
type RegistrationCompleted struct {
	ID             string                    `json:"id"`
	Type           string                    `json:"type"`
	SessionID      string                    `json:"sessionId"`
	OccurredAt     time.Time                 `json:"occurredAt"`
	Seller         registration.SellerRecord `json:"vendedor"`
	Representative Representative            `json:"representante"`
}

// NewEvent builds the event for a completion, hashing the password.
func NewEvent(c registration.Completion) (*RegistrationCompleted, error) {
	hash, err := auth.HashPassword(c.Representative.Password)
	if err != nil {
		return nil, fmt.Errorf("hash representative password: %w", err)
	}

	return &RegistrationCompleted{
		ID:         uuid.NewString(),
		Type:       EventType,
		SessionID:  c.SessionID,
		OccurredAt: c.CompletedAt,
		Seller:     c.Seller,
		Representative: Representative{
			FullName:     c.Representative.FullName,
			NationalID:   c.Representative.NationalID,
			Email:        c.Representative.Email,
			Phone:        c.Representative.Phone,
			PasswordHash: hash,
		},
	}, nil
}
