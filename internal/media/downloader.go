package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"
)

var (
	ErrRemoteFetch = errors.New("remote image could not be fetched")
	ErrInvalidURL  = errors.New("only absolute http(s) URLs are accepted")
	ErrBlockedHost = errors.New("private, loopback and link-local addresses are not fetched")
)

// extByContentType names a downloaded file whose URL carries no usable
// extension.
var extByContentType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// Downloader fetches images over HTTP(S) for the remote import.
type Downloader struct {
	Client    *http.Client
	UserAgent string

	// AllowPrivate lets Fetch reach loopback and internal networks.
	AllowPrivate bool
}

func NewDownloader(timeout time.Duration) *Downloader {
	d := &Downloader{UserAgent: "autocatalog-backend/1.0"}
	// The check runs on the resolved address at dial time, so redirects and
	// DNS names pointing inward are caught too.
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			return d.checkHost(host)
		},
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	d.Client = &http.Client{Timeout: timeout, Transport: transport}
	return d
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func blockedAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return !ip.IsValid() ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		sharedAddressSpace.Contains(ip)
}

// checkHost rejects literal IPs in blocked ranges. Names pass here and are
// checked again once the dialer has resolved them.
func (d *Downloader) checkHost(host string) error {
	if d.AllowPrivate {
		return nil
	}
	ip, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return nil
	}
	if blockedAddr(ip) {
		return ErrBlockedHost
	}
	return nil
}

// Remote is a fetched image not yet stored. Body must be closed.
type Remote struct {
	Name string
	Body io.ReadCloser
}

// Fetch opens rawURL and works out a file name with an allowed extension,
// from the URL path first and the Content-Type second. Oversized responses
// that announce their length are refused before reading.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*Remote, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if err := d.checkHost(u.Hostname()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetch, err)
	}
	req.Header.Set("User-Agent", d.UserAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := d.Client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) {
			return nil, ErrBlockedHost
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrRemoteFetch, resp.StatusCode)
	}
	if resp.ContentLength > MaxUploadSize {
		resp.Body.Close()
		return nil, ErrTooLarge
	}

	name := path.Base(u.Path)
	if _, err := Extension(name); err != nil {
		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		ext, ok := extByContentType[mediaType]
		if !ok {
			resp.Body.Close()
			return nil, ErrUnsupportedType
		}
		if name == "" || name == "/" || name == "." {
			name = "remote"
		}
		name = strings.TrimSuffix(name, path.Ext(name)) + ext
	}

	return &Remote{Name: name, Body: resp.Body}, nil
}
