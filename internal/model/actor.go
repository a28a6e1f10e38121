package model

import "fmt"

// ActorKind tags who is acting on the store.
type ActorKind string

const (
	ActorCustomer ActorKind = "customer"
	ActorEmployee ActorKind = "employee"
)

// Actor is either a customer or an employee, resolved once at the
// authentication boundary and passed explicitly to the core.
type Actor struct {
	Kind ActorKind
	ID   int64
}

// Customer returns a customer actor.
func Customer(id int64) Actor {
	return Actor{Kind: ActorCustomer, ID: id}
}

// Employee returns an employee actor.
func Employee(id int64) Actor {
	return Actor{Kind: ActorEmployee, ID: id}
}

// CustomerID returns the customer id if the actor is a customer.
func (a Actor) CustomerID() (int64, bool) {
	if a.Kind != ActorCustomer || a.ID <= 0 {
		return 0, false
	}
	return a.ID, true
}

// EmployeeID returns the employee id if the actor is an employee.
func (a Actor) EmployeeID() (int64, bool) {
	if a.Kind != ActorEmployee || a.ID <= 0 {
		return 0, false
	}
	return a.ID, true
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ID)
}

// ParseActorKind converts a header value to an ActorKind.
func ParseActorKind(s string) (ActorKind, error) {
	switch ActorKind(s) {
	case ActorCustomer, ActorEmployee:
		return ActorKind(s), nil
	default:
		return "", fmt.Errorf("unknown actor type %q", s)
	}
}
