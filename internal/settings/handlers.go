package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/playterm/internal/config"
	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/playground"
)

// SessionHandler applies channel, mode, crate-type, tests and editor.
func SessionHandler(cfg *playground.Configuration) Handler {
	return Handler{
		Match: ExactMatcher("channel", "mode", "crate-type", "crate_type", "tests", "editor"),
		Apply: func(key, val string) error {
			switch key {
			case "channel":
				ch, err := playground.ParseChannel(val)
				if err != nil {
					return err
				}
				cfg.Channel = ch
			case "mode":
				m, err := playground.ParseMode(val)
				if err != nil {
					return err
				}
				cfg.Mode = m
			case "crate-type", "crate_type":
				cfg.CrateType = playground.ParseCrateType(val)
			case "tests":
				b, err := parseBool(key, val)
				if err != nil {
					return err
				}
				cfg.Tests = b
			case "editor":
				e, err := playground.ParseEditor(val)
				if err != nil {
					return err
				}
				cfg.Editor = e
			}
			return nil
		},
	}
}

// ServerHandler applies server-* keys and the bare timeout/proxy/insecure
// shorthands.
func ServerHandler(s *config.ServerSettings) Handler {
	match := func(key string) bool {
		switch key {
		case "timeout", "proxy", "insecure", "url", "ca-cert":
			return true
		default:
			return strings.HasPrefix(key, "server-")
		}
	}
	return Handler{
		Match: match,
		Apply: func(key, val string) error {
			switch strings.TrimPrefix(key, "server-") {
			case "url":
				s.URL = val
			case "timeout":
				if d, err := time.ParseDuration(val); err != nil || d <= 0 {
					return errdef.New(errdef.CodeConfig, "invalid timeout %q", val)
				}
				s.Timeout = val
			case "proxy":
				s.Proxy = val
			case "insecure":
				b, err := parseBool(key, val)
				if err != nil {
					return err
				}
				s.Insecure = b
			case "ca-cert":
				s.CACerts = append(s.CACerts, val)
			default:
				return errdef.New(errdef.CodeConfig, "unknown setting %s", key)
			}
			return nil
		},
	}
}

func GistHandler(g *config.GistSettings) Handler {
	return Handler{
		Match: PrefixMatcher("gist-"),
		Apply: func(key, val string) error {
			switch strings.TrimPrefix(key, "gist-") {
			case "api-url":
				g.APIURL = val
			case "token":
				g.Token = val
			case "playground-url":
				g.PlaygroundURL = val
			default:
				return errdef.New(errdef.CodeConfig, "unknown setting %s", key)
			}
			return nil
		},
	}
}

func LogHandler(l *config.LogSettings) Handler {
	return Handler{
		Match: ExactMatcher("log-level", "log-format"),
		Apply: func(key, val string) error {
			if key == "log-level" {
				l.Level = val
			} else {
				l.Format = val
			}
			return nil
		},
	}
}

func parseBool(key, val string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return false, errdef.Wrap(errdef.CodeConfig, err, "invalid %s", key)
	}
	return b, nil
}
