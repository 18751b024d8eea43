package config

import "time"

// UI constants
const (
	InfractionsPerPage = 8

	ErrorColor   = 0xFF0000
	SuccessColor = 0x68C290
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
	InfractionColor   = 0xCD6D6D
	PardonColor       = 0x68C290
)

// Timeouts
const (
	DefaultQueryTimeout = 30 * time.Second
	AutocompleteTimeout = 2 * time.Second
)
