package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when inserting an entity whose id is taken.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrActiveOrderExists is returned when a passenger with a non-terminal
	// order tries to create another one.
	ErrActiveOrderExists = errors.New("passenger already has an active order")
)
