package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"portal-service/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectUsuarioRegistered = "usuario.registered"
	SubjectUsuarioUpdated    = "usuario.updated"
	SubjectUsuarioDeleted    = "usuario.deleted"
)

type EventPublisher interface {
	PublishUsuarioRegistered(usuario *model.Usuario) error
	PublishUsuarioUpdated(usuario *model.Usuario) error
	PublishUsuarioDeleted(usuarioID, deletedBy int64) error
}

type UsuarioEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	UsuarioID  int64     `json:"usuario_id"`
	Correo     string    `json:"correo,omitempty"`
	Rol        string    `json:"rol,omitempty"`
	DeletedBy  int64     `json:"deleted_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newUsuarioEvent(subject string, usuarioID int64) UsuarioEvent {
	return UsuarioEvent{
		EventID:    uuid.New(),
		EventType:  subject,
		UsuarioID:  usuarioID,
		OccurredAt: time.Now().UTC(),
	}
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("portal-service"))
	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}

func (p *NatsPublisher) publish(event UsuarioEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.Error("Error marshalling event JSON", "subject", event.EventType, "error", err)
		return err
	}

	if err := p.conn.Publish(event.EventType, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", "subject", event.EventType, "error", err)
		return err
	}

	slog.Info("Published event to NATS", "subject", event.EventType, "usuario_id", event.UsuarioID)

	return nil
}

func (p *NatsPublisher) PublishUsuarioRegistered(usuario *model.Usuario) error {
	event := newUsuarioEvent(SubjectUsuarioRegistered, usuario.ID)
	event.Correo = usuario.Correo
	event.Rol = usuario.Rol
	return p.publish(event)
}

func (p *NatsPublisher) PublishUsuarioUpdated(usuario *model.Usuario) error {
	event := newUsuarioEvent(SubjectUsuarioUpdated, usuario.ID)
	event.Correo = usuario.Correo
	event.Rol = usuario.Rol
	return p.publish(event)
}

func (p *NatsPublisher) PublishUsuarioDeleted(usuarioID, deletedBy int64) error {
	event := newUsuarioEvent(SubjectUsuarioDeleted, usuarioID)
	event.DeletedBy = deletedBy
	return p.publish(event)
}

// NopPublisher is used when NATS_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishUsuarioRegistered(*model.Usuario) error { return nil }
func (NopPublisher) PublishUsuarioUpdated(*model.Usuario) error    { return nil }
func (NopPublisher) PublishUsuarioDeleted(int64, int64) error      { return nil }
