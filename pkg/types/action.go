package types

import (
	"fmt"
	"time"
)

// Role names the part a model instance plays in an Action.
type Role string

// Actionable roles. Every registered model gets one generic relation per role.
const (
	RoleActor        Role = "actor"
	RoleTarget       Role = "target"
	RoleActionObject Role = "action_object"
)

// Roles lists the actionable roles in declaration order.
var Roles = []Role{RoleActor, RoleTarget, RoleActionObject}

// ParseRole returns the Role named by s.
// Returns ErrInvalidRole if s is not one of the Roles.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// ContentTypeField is the Action column holding the model label for the role.
func (r Role) ContentTypeField() string {
	return string(r) + "_content_type"
}

// ObjectIDField is the Action column holding the primary key for the role.
func (r Role) ObjectIDField() string {
	return string(r) + "_object_id"
}

// Action is a single activity record: an actor did verb, optionally to a
// target, optionally involving an action object. Each participant is stored
// as a (content type, object id) pair, where the content type is the dotted
// model label ("auth.user") and the object id is the primary key as text.
type Action struct {
	ActionID string `json:"action_id" gorm:"column:action_id;primaryKey"`

	ActorContentType string `json:"actor_content_type" gorm:"column:actor_content_type"`
	ActorObjectID    string `json:"actor_object_id" gorm:"column:actor_object_id"`

	Verb        string `json:"verb" gorm:"column:verb"`
	Description string `json:"description,omitempty" gorm:"column:description"`

	TargetContentType string `json:"target_content_type,omitempty" gorm:"column:target_content_type"`
	TargetObjectID    string `json:"target_object_id,omitempty" gorm:"column:target_object_id"`

	ActionObjectContentType string `json:"action_object_content_type,omitempty" gorm:"column:action_object_content_type"`
	ActionObjectObjectID    string `json:"action_object_object_id,omitempty" gorm:"column:action_object_object_id"`

	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp"`
	Public    bool      `json:"public" gorm:"column:public"`
}

// Participant returns the (content type, object id) pair stored for role.
// Both values are empty when the role is unset.
func (a *Action) Participant(role Role) (contentType, objectID string) {
	switch role {
	case RoleActor:
		return a.ActorContentType, a.ActorObjectID
	case RoleTarget:
		return a.TargetContentType, a.TargetObjectID
	case RoleActionObject:
		return a.ActionObjectContentType, a.ActionObjectObjectID
	}
	return "", ""
}

// SetParticipant stores the (content type, object id) pair for role.
// Returns ErrInvalidRole for an unknown role.
func (a *Action) SetParticipant(role Role, contentType, objectID string) error {
	switch role {
	case RoleActor:
		a.ActorContentType, a.ActorObjectID = contentType, objectID
	case RoleTarget:
		a.TargetContentType, a.TargetObjectID = contentType, objectID
	case RoleActionObject:
		a.ActionObjectContentType, a.ActionObjectObjectID = contentType, objectID
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

// Validate checks the fields every stored Action must carry.
func (a *Action) Validate() error {
	if a.Verb == "" {
		return ErrInvalidVerb
	}
	if a.ActorContentType == "" || a.ActorObjectID == "" {
		return ErrInvalidActor
	}
	return nil
}

// String renders the action the way activity feeds usually read:
// "auth.user:1 commented on blog.post:7".
func (a *Action) String() string {
	s := fmt.Sprintf("%s:%s %s", a.ActorContentType, a.ActorObjectID, a.Verb)
	if a.ActionObjectContentType != "" {
		s += fmt.Sprintf(" %s:%s", a.ActionObjectContentType, a.ActionObjectObjectID)
	}
	if a.TargetContentType != "" {
		s += fmt.Sprintf(" on %s:%s", a.TargetContentType, a.TargetObjectID)
	}
	return s
}
