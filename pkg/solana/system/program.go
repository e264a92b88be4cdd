// Package system holds the well-known system program and sysvar addresses.
package system

import (
	"crypto/ed25519"
)

// ProgramKey is the system program.
//
// Address: 11111111111111111111111111111111
var ProgramKey = ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))

// RentSysVar points to the system variable "Rent"
//
// Address: SysvarRent111111111111111111111111111111111
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar = ed25519.PublicKey{6, 167, 213, 23, 25, 44, 92, 81, 33, 140, 201, 76, 61, 74, 241, 127, 88, 218, 238, 8, 155, 161, 253, 68, 227, 219, 217, 138, 0, 0, 0, 0}
