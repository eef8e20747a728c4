package xpr

// Version of the xpr language and library.
const Version = "0.3.0"
