package loader

import "nova/abi"

// ParseOptions tokenizes line on whitespace and recognizes "debug" and
// "quiet"; every other token is silently ignored. Nonzero fields in the
// returned abi.Options mean enabled.
func ParseOptions(line string) abi.Options {
	var opts abi.Options
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		switch line[start:end] {
		case "debug":
			opts.Debug = 1
		case "quiet":
			opts.Quiet = 1
		}
		start = -1
	}
	for i := 0; i < len(line); i++ {
		if isSpace(line[i]) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(line))
	return opts
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
