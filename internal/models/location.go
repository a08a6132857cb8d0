package models

import (
	"fmt"
	"strings"
)

// LocationKind discriminates municipality-level from state-level queries.
type LocationKind string

const (
	LocationMunicipality LocationKind = "municipality"
	LocationState        LocationKind = "state"
)

// IsValid reports whether k is a supported location kind.
func (k LocationKind) IsValid() bool {
	switch k {
	case LocationMunicipality, LocationState:
		return true
	}
	return false
}

// String returns the string representation of the location kind
func (k LocationKind) String() string {
	return string(k)
}

// ParseLocationKind accepts the canonical names plus the Portuguese aliases
// used by the CLI flags ("municipio", "estado"). Empty defaults to municipality.
func ParseLocationKind(s string) (LocationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "municipality", "municipio", "município":
		return LocationMunicipality, nil
	case "state", "estado", "uf":
		return LocationState, nil
	}
	return "", NewError(ErrInvalidInput, "", fmt.Sprintf("Tipo de localização inválido: %s", s))
}

// Location identifies a municipality name or a state code.
type Location struct {
	Name string       `json:"name"`
	Kind LocationKind `json:"kind"`
}

// Validate checks the name is non-empty and the kind is known.
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return NewError(ErrInvalidInput, "", "localização é obrigatória")
	}
	if !l.Kind.IsValid() {
		return NewError(ErrInvalidInput, "", fmt.Sprintf("Tipo de localização inválido: %s", l.Kind))
	}
	return nil
}

func (l Location) String() string {
	return l.Name
}
