package loader

import "golang.org/x/text/encoding/unicode"

// ucs2Encoding decodes the UCS-2LE buffers UEFI's loaded-image protocol
// hands back for LoadOptions, the same encoding.Encoding construction the
// wider ecosystem uses for EFI variable payloads.
var ucs2Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUCS2 converts a raw UCS-2LE byte buffer (as read directly from the
// firmware loaded-image protocol's LoadOptions field) into a UTF-8 string.
// A malformed buffer decodes best-effort; DecodeUCS2 never fails outright
// since load options are advisory and an undecodable tail is simply
// truncated, matching the "truncation is ignored" handling spec.md
// describes for this field.
func DecodeUCS2(buf []byte) string {
	out, err := ucs2Encoding.NewDecoder().Bytes(buf)
	if err != nil {
		return string(out)
	}
	return string(out)
}
