package ir

// Version is the mock-rel release reported by the CLI.
const Version = "0.1.0"
