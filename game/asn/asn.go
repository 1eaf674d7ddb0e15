package asn

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrASNNotFound = errors.New("asn not found")
	ErrInvalidASN  = errors.New("invalid asn")
	ErrExhausted   = errors.New("no unused asn available")
)

// TaskType is the direction of a shipment
type TaskType string

const (
	Inbound  TaskType = "inbound"
	Outbound TaskType = "outbound"
)

// ContainerStatus is the load state of a container
type ContainerStatus string

const (
	StatusEmpty     ContainerStatus = "empty"
	StatusFull      ContainerStatus = "full"
	StatusLoading   ContainerStatus = "loading"
	StatusUnloading ContainerStatus = "unloading"
)

// ContainerStatuses lists every status in reporting order
var ContainerStatuses = []ContainerStatus{StatusEmpty, StatusFull, StatusLoading, StatusUnloading}

// ContainerType is the ISO size class of a container
type ContainerType string

const (
	Container20ft   ContainerType = "20ft"
	Container40ft   ContainerType = "40ft"
	Container40ftHC ContainerType = "40ft-HC"
)

// LocationType says whether a shipment should go to a yard bay or a dock door
type LocationType string

const (
	LocationYard LocationType = "yard"
	LocationDoor LocationType = "door"
)

// ASN is an advanced shipping notice: the task a driver receives at check-in
type ASN struct {
	ASNNumber       string          `json:"asn_number"`
	Type            TaskType        `json:"type"`
	FactoryID       int             `json:"factory_id"`
	FactoryName     string          `json:"factory_name"`
	ContainerNumber string          `json:"container_number"`
	ContainerType   ContainerType   `json:"container_type"`
	Status          ContainerStatus `json:"status"`
	PONumber        string          `json:"po_number"`
	Supplier        string          `json:"supplier"`
	ExpectedItems   int             `json:"expected_items"`
	Weight          int             `json:"weight"`
	LocationID      int             `json:"location_id,omitempty"`
	LocationType    LocationType    `json:"location_type,omitempty"`
}

// Label is the short text shown next to a truck
func (a ASN) Label() string {
	if a.Supplier == "" {
		return a.ContainerNumber
	}
	return fmt.Sprintf("%s (%s)", a.ContainerNumber, a.Supplier)
}

// Validate checks the fields the simulation depends on
func (a ASN) Validate() error {
	if strings.TrimSpace(a.ContainerNumber) == "" {
		return fmt.Errorf("%w: container_number is required", ErrInvalidASN)
	}
	switch a.Type {
	case "", Inbound, Outbound:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidASN, a.Type)
	}
	switch a.Status {
	case "", StatusEmpty, StatusFull, StatusLoading, StatusUnloading:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidASN, a.Status)
	}
	switch a.LocationType {
	case "", LocationYard, LocationDoor:
	default:
		return fmt.Errorf("%w: unknown location_type %q", ErrInvalidASN, a.LocationType)
	}
	if a.Weight < 0 || a.ExpectedItems < 0 {
		return fmt.Errorf("%w: weight and expected_items must not be negative", ErrInvalidASN)
	}
	return nil
}
