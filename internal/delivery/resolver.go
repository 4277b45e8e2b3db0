package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

// Policy decides what a read returns when providers are down.
type Policy string

const (
	// PolicyPermissive always returns every record, possibly with no links left.
	PolicyPermissive Policy = "permissive"

	// PolicyStrict fails the read when every known provider is down.
	PolicyStrict Policy = "strict"
)

var (
	// ErrAllProvidersDown is returned under the strict policy when no known provider is reachable.
	ErrAllProvidersDown = errors.New("all delivery providers are unavailable")

	// ErrProviderUnavailable is returned when a single link cannot be served because its provider is down.
	ErrProviderUnavailable = errors.New("delivery provider is unavailable")
)

// StatusSource supplies the provider health map.
type StatusSource interface {
	GetStatus(ctx context.Context) map[ProviderID]bool
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	Policy Policy

	// DefaultProvider is reported for records without a stored hint.
	// It is never used to decide whether a link is served.
	DefaultProvider ProviderID
}

// Resolver filters the links of catalog records down to the ones that can be served.
type Resolver struct {
	health     StatusSource
	classifier *Classifier
	cipher     *LinkCipher
	cfg        ResolverConfig
	recorder   Recorder
	logger     *utils.Logger
}

// NewResolver creates a resolver.
func NewResolver(health StatusSource, classifier *Classifier, cipher *LinkCipher, cfg ResolverConfig, recorder Recorder, logger *utils.Logger) *Resolver {
	if cfg.Policy == "" {
		cfg.Policy = PolicyPermissive
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Resolver{
		health:     health,
		classifier: classifier,
		cipher:     cipher,
		cfg:        cfg,
		recorder:   recorder,
		logger:     logger.Named("resolver"),
	}
}

// Resolve returns copies of records with only their servable links.
// The whole batch is judged against one health snapshot. Record order and all
// non-link fields are unchanged; links keep their stored (encrypted) form.
func (r *Resolver) Resolve(ctx context.Context, records []*models.MediaRecord) ([]*models.MediaRecord, error) {
	status := r.health.GetStatus(ctx)

	if r.cfg.Policy == PolicyStrict && r.allDown(status) {
		return nil, ErrAllProvidersDown
	}

	out := make([]*models.MediaRecord, len(records))
	for i, rec := range records {
		resolved := *rec
		resolved.Links = r.filterRecord(rec, status)
		out[i] = &resolved
	}
	return out, nil
}

// filterRecord drops undecryptable links, then filters the rest on provider health.
func (r *Resolver) filterRecord(rec *models.MediaRecord, status map[ProviderID]bool) []models.DeliveryLink {
	plain := make(map[string]string, len(rec.Links))
	readable := make([]models.DeliveryLink, 0, len(rec.Links))
	for _, link := range rec.Links {
		p, err := r.RevealURL(link)
		if err != nil {
			r.logger.Warn("Dropping undecryptable link", "kind", string(rec.Kind), "id", rec.ID.Hex(), "quality", link.Quality, "error", err)
			continue
		}
		plain[link.URL] = p
		readable = append(readable, link)
	}
	if dropped := len(rec.Links) - len(readable); dropped > 0 {
		r.recorder.LinksDropped(DropUndecryptable, dropped)
	}

	kept := FilterLinks(readable, status, func(link models.DeliveryLink) ProviderID {
		return r.providerOf(plain[link.URL], rec.Provider)
	})
	if dropped := len(readable) - len(kept); dropped > 0 {
		r.recorder.LinksDropped(DropProviderDown, dropped)
	}
	return kept
}

// providerOf classifies a plaintext URL, falling back to a stored hint naming a known provider.
func (r *Resolver) providerOf(plainURL, hint string) ProviderID {
	id := r.classifier.Classify(plainURL)
	if id == Unknown && hint != "" && r.classifier.Known(ProviderID(hint)) {
		return ProviderID(hint)
	}
	return id
}

func (r *Resolver) allDown(status map[ProviderID]bool) bool {
	providers := r.classifier.Providers()
	if len(providers) == 0 {
		return false
	}
	return !lo.SomeBy(providers, func(id ProviderID) bool {
		return status[id]
	})
}

// ServableURL returns the plaintext URL of link when its provider is up or unknown.
func (r *Resolver) ServableURL(ctx context.Context, link models.DeliveryLink, hint string) (string, error) {
	plain, err := r.RevealURL(link)
	if err != nil {
		return "", err
	}

	id := r.providerOf(plain, hint)
	if id != Unknown && !r.health.GetStatus(ctx)[id] {
		return "", fmt.Errorf("%w: %s", ErrProviderUnavailable, id)
	}
	return plain, nil
}

// TargetAvailable reports ErrProviderUnavailable when target belongs to a provider that is down.
func (r *Resolver) TargetAvailable(ctx context.Context, target string) error {
	id := r.classifier.Classify(target)
	if id != Unknown && !r.health.GetStatus(ctx)[id] {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, id)
	}
	return nil
}

// EncryptLinks returns the links with their URLs encrypted for storage.
func (r *Resolver) EncryptLinks(links []models.DeliveryLink) ([]models.DeliveryLink, error) {
	out := make([]models.DeliveryLink, len(links))
	for i, link := range links {
		enc, err := r.cipher.Encrypt(link.URL)
		if err != nil {
			return nil, fmt.Errorf("encrypt link %d: %w", i, err)
		}
		link.URL = enc
		out[i] = link
	}
	return out, nil
}

// RevealURL recovers the plaintext URL of a stored link.
// Values that are already absolute http(s) URLs predate encryption and pass through.
func (r *Resolver) RevealURL(link models.DeliveryLink) (string, error) {
	if IsPlainURL(link.URL) {
		return link.URL, nil
	}
	return r.cipher.Decrypt(link.URL)
}

// DisplayProvider returns the provider to report for a record.
func (r *Resolver) DisplayProvider(hint string) string {
	if hint != "" {
		return hint
	}
	return string(r.cfg.DefaultProvider)
}

// Policy returns the active filter policy.
func (r *Resolver) Policy() Policy {
	return r.cfg.Policy
}

// IsPlainURL reports whether s is an absolute http or https URL.
func IsPlainURL(s string) bool {
	if !strings.Contains(s, "://") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
