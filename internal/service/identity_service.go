package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"votist/internal/config"
	"votist/internal/domain"
	"votist/internal/logger"
	"votist/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims are the claims the identity provider puts in session tokens.
type SessionClaims struct {
	Email          string   `json:"email,omitempty"`
	Emails         []string `json:"emails,omitempty"`
	PublicMetadata struct {
		Role string `json:"role,omitempty"`
	} `json:"public_metadata"`
	jwt.RegisteredClaims
}

// TokenVerifier turns a provider session token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*domain.Identity, error)
}

type jwtTokenVerifier struct {
	hmacSecret []byte
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenVerifier prefers an RS256 public key and falls back to an HS256
// shared secret. One of the two must be configured.
func NewTokenVerifier(cfg config.IdentityConfig) (TokenVerifier, error) {
	v := &jwtTokenVerifier{issuer: cfg.Issuer}
	switch {
	case strings.TrimSpace(cfg.JWTPublicKeyPEM) != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity public key: %w", err)
		}
		v.publicKey = key
	case cfg.JWTSecret != "":
		v.hmacSecret = []byte(cfg.JWTSecret)
	default:
		return nil, errors.New("identity token verification is not configured (set jwt_public_key_pem or jwt_secret)")
	}
	return v, nil
}

func (v *jwtTokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if v.publicKey != nil {
		return v.publicKey, nil
	}
	return v.hmacSecret, nil
}

func (v *jwtTokenVerifier) Verify(ctx context.Context, tokenString string) (*domain.Identity, error) {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if v.publicKey != nil {
		methods = []string{jwt.SigningMethodRS256.Alg()}
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, opts...)
	if err != nil || !token.Valid {
		logger.Get().Debug("Session token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSessionToken)
	}

	emails := claims.Emails
	if claims.Email != "" {
		emails = append([]string{claims.Email}, emails...)
	}
	return &domain.Identity{
		Subject: claims.Subject,
		Emails:  emails,
		Role:    claims.PublicMetadata.Role,
	}, nil
}

// IdentityResolver maps a verified identity onto the local user directory,
// creating or refreshing the local record as needed.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity domain.Identity) (*domain.User, error)
}

type identityResolver struct {
	userRepo domain.UserRepository
	profiles domain.ProfileProvider
	sfGroup  singleflight.Group
}

// NewIdentityResolver accepts a nil profiles provider; token claims are then
// the only source of user data.
func NewIdentityResolver(userRepo domain.UserRepository, profiles domain.ProfileProvider) IdentityResolver {
	return &identityResolver{userRepo: userRepo, profiles: profiles}
}

func (r *identityResolver) Resolve(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if identity.Subject == "" {
		return nil, domain.NewUnauthorizedError("missing identity subject")
	}
	// The shared lookup must outlive any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := r.sfGroup.DoChan(identity.Subject, func() (interface{}, error) {
		return r.resolve(shared, identity)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *(res.Val.(*domain.User))
		return &user, nil
	}
}

func (r *identityResolver) resolve(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	var (
		local   *domain.User
		profile *domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := r.userRepo.FindByExternalID(gctx, identity.Subject)
		if err != nil {
			return domain.NewInternalError("Failed to look up user", err)
		}
		local = u
		return nil
	})
	if r.profiles != nil {
		g.Go(func() error {
			p, err := r.profiles.GetProfile(gctx, identity.Subject)
			if err != nil {
				// Provider outages degrade to claims-only data.
				logger.Get().Warn("Identity profile lookup failed", zap.String("subject", identity.Subject), zap.Error(err))
				return nil
			}
			profile = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	desired := desiredUser(identity, profile, local)
	if local != nil && sameUser(local, desired) {
		return local, nil
	}

	stored, err := r.userRepo.Upsert(ctx, desired)
	if err != nil {
		return nil, domain.NewInternalError("Failed to save user", err)
	}
	logger.Get().Info("Local user synchronized",
		zap.String("userID", stored.ID),
		zap.String("subject", stored.ExternalID),
		zap.Bool("created", local == nil),
		zap.Bool("admin", stored.IsAdmin),
	)
	return stored, nil
}

// desiredUser merges claims, the provider profile and the existing record.
// Profile fields win over claims when present.
func desiredUser(identity domain.Identity, profile *domain.Profile, local *domain.User) *domain.User {
	u := &domain.User{ExternalID: identity.Subject, Email: identity.PrimaryEmail()}
	role := identity.Role
	if local != nil {
		u.ID = local.ID
		u.FirstName = local.FirstName
		u.LastName = local.LastName
		u.AvatarURL = local.AvatarURL
		if u.Email == "" {
			u.Email = local.Email
		}
	} else {
		u.ID = util.NewULID()
	}
	if profile != nil {
		u.FirstName = profile.FirstName
		u.LastName = profile.LastName
		u.AvatarURL = profile.AvatarURL
		if len(profile.Emails) > 0 {
			u.Email = profile.Emails[0]
		}
		if profile.Role != "" {
			role = profile.Role
		}
	}
	u.IsAdmin = role == domain.RoleAdmin
	return u
}

func sameUser(a, b *domain.User) bool {
	return a.Email == b.Email &&
		a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.AvatarURL == b.AvatarURL &&
		a.IsAdmin == b.IsAdmin
}
