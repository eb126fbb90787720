package kin

import (
	"strings"
	"time"
)

// Gender is the closed set of gender tags carried on a person record.
// Unknown is represented by the empty string.
type Gender string

// Gender tags.
const (
	GenderUnknown Gender = ""
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderOther   Gender = "other"
)

// Person is one individual in the snapshot. The layout engine treats person
// records as immutable; they are owned by the external data store and never
// written back.
//
// Born and Died are optional. A nil Born date participates in ordering
// through the comparators in pkg/layout, which substitute deterministic
// sentinels instead of failing.
type Person struct {
	ID         string     `json:"id" bson:"id"`
	GivenName  string     `json:"given_name" bson:"given_name"`
	FamilyName string     `json:"family_name,omitempty" bson:"family_name,omitempty"`
	Born       *time.Time `json:"born,omitempty" bson:"born,omitempty"`
	Died       *time.Time `json:"died,omitempty" bson:"died,omitempty"`
	Gender     Gender     `json:"gender,omitempty" bson:"gender,omitempty"`
	Note       string     `json:"note,omitempty" bson:"note,omitempty"`
}

// DisplayName returns "Given Family", falling back to whichever part is set,
// and finally to the ID so a person is never rendered nameless.
func (p Person) DisplayName() string {
	name := strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	if name == "" {
		return p.ID
	}
	return name
}

// Lifespan formats the birth and death years as "1950–2020", "1950–", or ""
// when no dates are recorded. Used as the card subtitle by renderers.
func (p Person) Lifespan() string {
	if p.Born == nil && p.Died == nil {
		return ""
	}
	var b strings.Builder
	if p.Born != nil {
		b.WriteString(p.Born.Format("2006"))
	}
	b.WriteString("–")
	if p.Died != nil {
		b.WriteString(p.Died.Format("2006"))
	}
	return b.String()
}
