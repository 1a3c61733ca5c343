package models

import "strings"

type Status string

const (
	StatusIncarcerated Status = "incarcerated"
	StatusParole       Status = "parole"
	StatusTransferred  Status = "transferred"
	StatusReleased     Status = "released"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusIncarcerated, StatusParole, StatusTransferred, StatusReleased}

var statusLabels = map[Status]string{
	StatusIncarcerated: "Incarcerated",
	StatusParole:       "Parole",
	StatusTransferred:  "Transferred",
	StatusReleased:     "Released",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

type Crime string

const (
	CrimeHomicide        Crime = "homicide"
	CrimeRobbery         Crime = "robbery"
	CrimeTheft           Crime = "theft"
	CrimeDrugTrafficking Crime = "drug_trafficking"
	CrimeRape            Crime = "rape"
	CrimeKidnapping      Crime = "kidnapping"
	CrimeCorruption      Crime = "corruption"
	CrimeOther           Crime = "other"
)

var Crimes = []Crime{
	CrimeHomicide,
	CrimeRobbery,
	CrimeTheft,
	CrimeDrugTrafficking,
	CrimeRape,
	CrimeKidnapping,
	CrimeCorruption,
	CrimeOther,
}

func (c Crime) Valid() bool {
	for _, known := range Crimes {
		if c == known {
			return true
		}
	}
	return false
}

type VisitType string

const (
	VisitSocial    VisitType = "social"
	VisitFamily    VisitType = "family"
	VisitLawyer    VisitType = "lawyer"
	VisitMedical   VisitType = "medical"
	VisitReligious VisitType = "religious"
)

var VisitTypes = []VisitType{VisitSocial, VisitFamily, VisitLawyer, VisitMedical, VisitReligious}

func (v VisitType) Valid() bool {
	for _, known := range VisitTypes {
		if v == known {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleDirector Role = "director"
)

var Roles = []Role{RoleAdmin, RoleAgent, RoleDirector}

// ParseRole normalises user input. The legacy "direct" spelling maps to director.
func ParseRole(raw string) (Role, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "direct" {
		value = string(RoleDirector)
	}
	for _, role := range Roles {
		if string(role) == value {
			return role, true
		}
	}
	return "", false
}
