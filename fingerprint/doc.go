// Package fingerprint computes SHA-1 and SHA-256 digests of signing
// certificates and renders them as a report. FormatDigests produces the
// line-oriented text form ("SHA-1: ..." / "SHA-256: ..." per certificate)
// expected by existing callers; Report.Render adds JSON and YAML output and
// custom per-certificate templates.
package fingerprint
