package kernel

import (
	"errors"
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

// ActorType classifies who requested a lifecycle change.
type ActorType int

const (
	ActorTypeUnknown ActorType = iota
	ActorTypeUser
	ActorTypeOperator
	ActorTypeSystem
)

const systemActorName = "system"

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor or SystemActor")

func getActorTypeStrings() map[ActorType]string {
	return map[ActorType]string{
		ActorTypeUser:     "USER",
		ActorTypeOperator: "OPERATOR",
		ActorTypeSystem:   "SYSTEM",
	}
}

func (t ActorType) String() string {
	if s, ok := getActorTypeStrings()[t]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t ActorType) Validate() error {
	if _, ok := getActorTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("actor type", fmt.Errorf("%d is not a valid actor type", t))
	}
	return nil
}

// ParseActorType accepts the names returned by String, case-insensitively.
func ParseActorType(s string) (ActorType, error) {
	for t, name := range getActorTypeStrings() {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return ActorTypeUnknown, errs.NewValueIsInvalidErrorWithCause("actor type", fmt.Errorf("%q is not a valid actor type", s))
}

// Actor is the explicit caller identity passed to every state-changing
// operation. It is recorded on cancellation records.
type Actor struct { //nolint:recvcheck //using for validation
	id    int64
	name  string
	kind  ActorType
	guard guard.ConstructorGuard
}

// NewActor builds a user or operator identity. Both need a positive id.
func NewActor(id int64, name string, kind ActorType) (Actor, error) {
	a := Actor{guard: guard.NewConstructorGuard()}

	if err := errors.Join(a.setKind(kind), a.setID(id), a.setName(name)); err != nil {
		return Actor{}, err
	}
	return a, nil
}

// SystemActor is the identity used by periodic sweeps.
func SystemActor() Actor {
	return Actor{
		name:  systemActorName,
		kind:  ActorTypeSystem,
		guard: guard.NewConstructorGuard(),
	}
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() int64 {
	return a.id
}

func (a Actor) Name() string {
	return a.name
}

func (a Actor) Type() ActorType {
	return a.kind
}

func (a Actor) IsSystem() bool {
	return a.kind == ActorTypeSystem
}

func (a Actor) String() string {
	return fmt.Sprintf("%s(%d:%s)", a.kind, a.id, a.name)
}

func (a *Actor) setKind(kind ActorType) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	a.kind = kind
	return nil
}

func (a *Actor) setID(id int64) error {
	if a.kind == ActorTypeSystem {
		a.id = id
		return nil
	}
	if id <= 0 {
		return errs.NewValueIsRequiredError("actor id")
	}
	a.id = id
	return nil
}

func (a *Actor) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" && a.kind == ActorTypeSystem {
		name = systemActorName
	}
	a.name = name
	return nil
}
