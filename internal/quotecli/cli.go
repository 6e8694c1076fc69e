package quotecli

import (
	"io"
)

// ShowHelp prints usage information for the quote command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Deposit Bonus Quote Tool
========================

Prints the bonus message for each amount.

Usage:
  quote -tiers <url|file> [options] amount...
  quote -server <url> [options] amount...

Options:
  -tiers string
        Tier document: http(s) URL or a local .json/.yaml file
  -version string
        Version token appended as ?v= to the tier URL
  -server string
        Base URL of a running bonus service; quotes are computed there
  -locale string
        BCP 47 locale for amounts (default "en-IN")
  -symbol string
        Currency symbol (default "₹")
  -rounding string
        floor or round (default "floor")
  -timeout duration
        Fetch timeout (default 5s)
  -json
        Print one JSON quote per line
  -verbose
        Log tier loading to stderr

Examples:
  quote -tiers ./tiers.json 500 5000 "12,500"
  quote -tiers https://example.com/tiers.json -version 2024-06 25000
  quote -server http://localhost:9080 -json 5000
`)
}
