// Package browser hands URLs to the desktop's default handler.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

var ErrNotImplemented = errors.New("browser: no URL opener for this platform")

// starter runs the opener command without waiting for it. Tests replace it.
var starter = func(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenURL opens a URL with the default handler and returns once the handler
// process has started.
func OpenURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("browser: url is required")
	}
	name, args, err := openerCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	if err := starter(exec.Command(name, append(args, rawURL)...)); err != nil {
		return fmt.Errorf("browser: open %s: %w", rawURL, err)
	}
	return nil
}

func openerCommand(goos string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "xdg-open", nil, nil
	case "darwin":
		return "open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		return "", nil, ErrNotImplemented
	}
}

// MailtoURL returns a mailto: URL addressed to every given address.
func MailtoURL(addresses ...string) (string, error) {
	var to []string
	for _, address := range addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		if strings.ContainsAny(address, "?&\r\n") {
			return "", fmt.Errorf("browser: invalid mail address %q", address)
		}
		to = append(to, address)
	}
	if len(to) == 0 {
		return "", errors.New("browser: at least one mail address is required")
	}
	u := url.URL{Scheme: "mailto", Opaque: strings.Join(to, ",")}
	return u.String(), nil
}

// TelURL returns a tel: URL for number with spaces and separators removed.
func TelURL(number string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(number) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("browser: invalid phone number %q", number)
		}
	}
	if b.Len() == 0 || b.String() == "+" {
		return "", fmt.Errorf("browser: invalid phone number %q", number)
	}
	return "tel:" + b.String(), nil
}
