package utils // package utils provides helpers for session tokens and password hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for session ids
    "encoding/hex"  // hex encoding of random bytes and digests
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken is the signed cookie value handed to a logged-in staff
// member together with its expiry.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims carried by a session cookie.  SessionID is
// the raw id whose hash is stored in staff_sessions.
type SessionClaims struct {
    UserID    uint64
    Role      string
    SessionID string
}

// ErrInvalidSession is returned by ParseSessionToken for any token that is
// malformed, expired, signed with another key or missing claims.
var ErrInvalidSession = errors.New("invalid session token")

// NewSessionToken signs an HS256 JWT with sub, role, sid, exp and iat.
func NewSessionToken(secret string, c SessionClaims, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  strconv.FormatUint(c.UserID, 10),
        "role": c.Role,
        "sid":  c.SessionID,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry and extracts the claims.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidSession
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrInvalidSession
    }
    sub, _ := claims["sub"].(string)
    uid, err := strconv.ParseUint(sub, 10, 64)
    if err != nil || uid == 0 {
        return SessionClaims{}, ErrInvalidSession
    }
    role, _ := claims["role"].(string)
    sid, _ := claims["sid"].(string)
    if sid == "" {
        return SessionClaims{}, ErrInvalidSession
    }
    return SessionClaims{UserID: uid, Role: role, SessionID: sid}, nil
}

// NewSessionID returns 32 random bytes hex encoded.
func NewSessionID() (string, error) {
    return randomHex(32)
}

// HashSessionID returns the SHA-256 hex digest stored in staff_sessions.
func HashSessionID(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
