package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleManager         Role = "MANAGER"
	RoleCashier         Role = "CASHIER"
	RoleStaff           Role = "STAFF"
	RoleDG              Role = "DG"
	RoleDF              Role = "DF"
	RoleRFM             Role = "RFM"
	RoleChiefAccountant Role = "CHIEF_ACCOUNTANT"
	RoleAccountant      Role = "ACCOUNTANT"
)

var validRoles = map[Role]bool{
	RoleAdmin: true, RoleManager: true, RoleCashier: true, RoleStaff: true,
	RoleDG: true, RoleDF: true, RoleRFM: true, RoleChiefAccountant: true,
	RoleAccountant: true,
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r *Role) Scan(value interface{}) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*r = Role(s)
	if !r.IsValid() {
		return fmt.Errorf("invalid role %q", s)
	}
	return nil
}

func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}

// UserType is the viewer's authorization tier: HQ sees everything, ZONE sees
// its zone's centres, CENTRE sees its own records only.
type UserType string

const (
	UserTypeHQ     UserType = "HQ"
	UserTypeZone   UserType = "ZONE"
	UserTypeCentre UserType = "CENTRE"
)

func (t UserType) IsValid() bool {
	return t == UserTypeHQ || t == UserTypeZone || t == UserTypeCentre
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusPending  UserStatus = "PENDING"
)

func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive || s == UserStatusPending
}

type CentreRank string

const (
	CentreRankA CentreRank = "A"
	CentreRankB CentreRank = "B"
	CentreRankC CentreRank = "C"
)

func (r CentreRank) IsValid() bool {
	return r == CentreRankA || r == CentreRankB || r == CentreRankC
}

type LoginAttemptStatus string

const (
	LoginAttemptSuccess LoginAttemptStatus = "SUCCESS"
	LoginAttemptFailure LoginAttemptStatus = "FAILURE"
)

func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.New("value is not a string")
	}
}
