// Package domain models SuperDARN real-time radar data.
//
// # Data Source
//
// The Super Dual Auroral Radar Network (SuperDARN) is a network of HF radars
// that sound the ionosphere to measure plasma convection. Each radar steps
// through a fan of numbered beam directions; every sounding produces one
// fitted record (a "dmap" record in SuperDARN tooling). The real-time
// distribution server decodes those records and pushes them to subscribers as
// JSON events over a Socket.IO connection, one event per record.
//
// # Inbound Record Shape
//
// Each payload is a flat JSON object. The fields consumed here:
//
//	site_name  three-letter radar code, e.g. "sas" (Saskatoon)
//	beam       beam number that produced the sounding, 0-based
//	velocity   line-of-sight Doppler velocity per range gate with an echo,
//	           in m/s; its length is the total echo count for the sounding
//	g_scatter  ground-scatter flag per echo, position-aligned with velocity:
//	           1 = ground scatter, 0 = ionospheric
//
// Payloads carry further fitted parameters (power, spectral width, gate
// lists) that this service does not consume. Validation is field presence
// only: a payload missing one of the four fields above is malformed, anything
// else passes through untouched.
//
// # Echo Classification
//
// An echo is a single return sample. The fitting software marks returns that
// bounced off the ground rather than the ionosphere with g_scatter = 1, so:
//
//	total echoes         = len(velocity)
//	ground-scatter count = flags equal to 1
//	ionospheric count    = flags equal to 0
//
// Some fitter versions emit sentinel flag values outside {0, 1} (for example
// 2, or -1 for unfittable gates). Such entries belong to neither class and
// are excluded from both split counters, so the two classes need not sum to
// the total. See [CountEchoes].
//
// # Site Codes
//
// [KnownSites] lists the radars this deployment tracks. The feed is shared
// infrastructure and may deliver records from sites outside the table; those
// records are processed identically (a track file is named by the inbound
// site code verbatim) and only flagged in logs and metrics.
package domain
