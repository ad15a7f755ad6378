// Package domain models the two Central Weather Administration (CWA) payloads
// served by the proxy.
//
// # Data Sources
//
// Tropical cyclone tracks come from the CWA open data REST API
// (https://opendata.cwa.gov.tw/api/v1/rest/datastore/<dataset>), which requires
// an Authorization query parameter. The default dataset is W-C0034-005. The
// document is opaque to the proxy: it is checked for valid JSON and passed
// through unchanged as [CycloneData].
//
// Warnings come from the public CWA RSS bulletin feed. Each <item> is reduced
// to a [WarningItem] of title, link, description and pubDate. Missing elements
// become empty strings.
//
// # Keyword Filtering
//
// A bulletin is a warning when its title or description contains one of
// [DefaultKeywords]:
//
//	警報          warning
//	特報          special report
//	豪(大)雨特報  heavy rain special report (literal parentheses)
//	低溫特報      low temperature special report
//	濃霧特報      dense fog special report
//
// Matching is a case-sensitive substring check and preserves feed order.
// Note that "豪大雨特報" matches through "特報", not through the parenthesised
// keyword.
//
// # Errors
//
// Upstream failures are classified as transport, decode or internal
// ([ErrorKind]) and rendered as an [ErrorResponse] envelope.
package domain
