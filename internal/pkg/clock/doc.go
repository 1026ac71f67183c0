// Package clock provides the time source used for TOTP time steps, replay TTLs
// and rate-limit windows.
//
// Production wiring uses TimeClocker. Tests use Manual to step across TOTP
// periods and sliding windows without sleeping.
package clock
