// Package machine implements the data model of the SIC/XE computer.
//
// A Machine has nine registers (A, X, L, B, S, T, F, PC, SW), a flat 1 MiB
// byte addressable memory, and a table of 256 byte-wide I/O devices. The
// integer registers hold 24-bit two's complement words, the F register
// holds a 48-bit floating point value. A Machine has no execution logic of
// its own, see package cpu for that.
package machine
