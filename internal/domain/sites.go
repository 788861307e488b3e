package domain

import "slices"

// KnownSites is the table of radar site codes this deployment tracks:
// the Canadian (SuperDARN Canada), US mid-latitude, Alaskan, Japanese and
// Antarctic radars whose records the feed is expected to carry.
var KnownSites = []string{
	"sas", "rkn", "pgr", "cly", "inv",
	"bks", "fhe", "fhw", "kap", "gbr",
	"cve", "cvw", "mcm", "kod", "hok",
	"hkw", "wal",
}

// KnownSite reports whether code appears in the tracked-site table. The
// table never gates processing: track files are named by the inbound code
// verbatim. It only backs the unlisted-site warning and the feed simulator.
func KnownSite(code string) bool {
	return slices.Contains(KnownSites, code)
}
