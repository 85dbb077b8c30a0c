package models

import "errors"

var (
	errInvalidEmail   = errors.New("invalid email address")
	errCentreNotFound = errors.New("centre not found")
	errZoneNotFound   = errors.New("zone not found")
)
