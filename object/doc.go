// Package object reads SIC/XE object programs.
//
// An object program is a text file of records, one per line:
//
//	H<name:6><start:6><length:6>   header
//	T<address:6><count:2><data>    text: count bytes at address
//	M<address:6><length:2>         modification: length half-bytes at address
//	E[<entry:6>]                   end, with optional entry address
//
// Numeric fields are hexadecimal, in either case.
package object
