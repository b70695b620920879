package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownID is returned when a product or supply id is outside the catalog.
	ErrUnknownID = errors.New("unknown catalog id")

	// ErrUnknownAgency is returned when an agency id is outside the catalog.
	ErrUnknownAgency = errors.New("unknown agency")
)

// Kind names which closed set an id was checked against.
type Kind string

const (
	KindProduct Kind = "product"
	KindSupply  Kind = "supply"
)

// UnknownIDError reports the offending id and its set.
type UnknownIDError struct {
	Kind Kind
	ID   string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown %s id %q", e.Kind, e.ID)
}

func (e *UnknownIDError) Unwrap() error {
	return ErrUnknownID
}
