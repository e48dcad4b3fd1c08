package maternal

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOngoing   = "ongoing"
	StatusDelivered = "delivered"
)

var deliveryTypes = map[string]bool{"normal": true, "cesarean": true, "assisted": true}

// Record maps to maternal_health_records. EDD and Status are derived and
// ignored on input.
type Record struct {
	ID                uuid.UUID  `json:"id"`
	ResidentID        uuid.UUID  `json:"resident_id"`
	ResidentName      string     `json:"resident_name,omitempty"`
	LMPDate           string     `json:"lmp_date"`
	EDD               string     `json:"edd"`
	PrenatalVisits    int        `json:"prenatal_visits"`
	BloodPressure     string     `json:"blood_pressure"`
	WeightKg          *float64   `json:"weight_kg,omitempty"`
	Hemoglobin        *float64   `json:"hemoglobin,omitempty"`
	IronSupplement    bool       `json:"iron_supplement"`
	FolicAcid         bool       `json:"folic_acid"`
	TetanusToxoid     bool       `json:"tetanus_toxoid"`
	CalciumSupplement bool       `json:"calcium_supplement"`
	Deworming         bool       `json:"deworming"`
	DeliveryDate      string     `json:"delivery_date"`
	DeliveryType      string     `json:"delivery_type"`
	BabyWeightKg      *float64   `json:"baby_weight_kg,omitempty"`
	PlaceOfDelivery   string     `json:"place_of_delivery"`
	Complications     string     `json:"complications"`
	Notes             string     `json:"notes"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

func (r *Record) derive() {
	if r.DeliveryDate != "" {
		r.Status = StatusDelivered
	} else {
		r.Status = StatusOngoing
	}
}

type ListFilter struct {
	Search     string
	ResidentID *uuid.UUID
	Status     string
	Archived   bool
}
