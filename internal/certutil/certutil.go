// Package certutil generates and loads the mTLS certificates the daemon's
// gRPC listener and client CLI commands use. Every fallible step here is
// tagged with a Kind so a caller can errors.As against a specific failure
// mode instead of string-matching, the same Kind/Error shape job/errors.go
// uses for the supervisor's own error taxonomy.
package certutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"

	"google.golang.org/grpc/credentials"
)

// Kind tags which step of certificate loading or generation failed.
type Kind int

const (
	// KindInvalidCACert means a CA certificate PEM could not be parsed
	// into a pool.
	KindInvalidCACert Kind = iota
	// KindInvalidKeyPair means a cert/key PEM pair did not load as a
	// matching tls.Certificate.
	KindInvalidKeyPair
	// KindInvalidConfig means a GenerateCertificateConfig combination is
	// not meaningful (e.g. a CA with a server host).
	KindInvalidConfig
	// KindKeyGeneration means the ECDSA private key itself could not be
	// generated.
	KindKeyGeneration
	// KindSerialNumber means a random serial number could not be drawn.
	KindSerialNumber
	// KindSigner means the signer cert or key supplied to sign a new
	// certificate could not be parsed.
	KindSigner
	// KindCertCreation means x509.CreateCertificate itself failed.
	KindCertCreation
	// KindKeyMarshal means the generated private key could not be
	// serialized to PKCS8 for PEM encoding.
	KindKeyMarshal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCACert:
		return "InvalidCACert"
	case KindInvalidKeyPair:
		return "InvalidKeyPair"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindKeyGeneration:
		return "KeyGeneration"
	case KindSerialNumber:
		return "SerialNumber"
	case KindSigner:
		return "Signer"
	case KindCertCreation:
		return "CertCreation"
	case KindKeyMarshal:
		return "KeyMarshal"
	default:
		return "UnknownKind"
	}
}

// Error is the structured error every exported function in this package
// returns on failure. A caller uses errors.As to get at Kind and check the
// failure mode without parsing the message; Err carries the underlying
// reason and is reachable via Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newErrf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// tlsMinVersion floors every listener and dial at TLS 1.2.
const tlsMinVersion = tls.VersionTLS12

// tlsCipherSuites restricts negotiation to the top-preferred AEAD ECDHE
// suites from the standard library's own cipher-suite ordering.
var tlsCipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384, tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305, tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

func loadCAPool(pemBytes []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, newErrf(KindInvalidCACert, "no certificates found in PEM")
	}
	return pool, nil
}

// MTLSServerCredentials builds the TransportCredentials a gRPC listener
// uses to require and verify a client certificate signed by clientCACert.
func MTLSServerCredentials(clientCACert, serverCert, serverKey []byte) (credentials.TransportCredentials, error) {
	pool, err := loadCAPool(clientCACert)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(serverCert, serverKey)
	if err != nil {
		return nil, newErr(KindInvalidKeyPair, err)
	}
	return credentials.NewTLS(&tls.Config{
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsMinVersion,
		CipherSuites: tlsCipherSuites,
	}), nil
}

// MTLSClientCredentials builds the TransportCredentials a gRPC client uses
// to dial a server whose certificate chains to serverCACert, presenting its
// own clientCert/clientKey for the server to verify in turn.
func MTLSClientCredentials(serverCACert, clientCert, clientKey []byte) (credentials.TransportCredentials, error) {
	pool, err := loadCAPool(serverCACert)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(clientCert, clientKey)
	if err != nil {
		return nil, newErr(KindInvalidKeyPair, err)
	}
	return credentials.NewTLS(&tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsMinVersion,
		CipherSuites: tlsCipherSuites,
	}), nil
}

// GenerateCertificateConfig configures GenerateCertificate.
type GenerateCertificateConfig struct {
	// SignerCert/SignerKey are the PEM-encoded CA that should sign the
	// new certificate. Leave both empty for a self-signed certificate.
	SignerCert []byte
	SignerKey  []byte
	// OU becomes the certificate's Subject.OrganizationalUnit, which
	// rpcserver reads back off the peer certificate as the caller's
	// namespace.
	OU string
	// CA marks the new certificate as able to sign others. Mutually
	// exclusive with ServerHost.
	CA bool
	// ServerHost, if set, makes this a server certificate valid for that
	// IP or DNS name; otherwise it is a client certificate.
	ServerHost string
}

// GenerateCertificate generates an ECDSA P-256 certificate valid for one
// year, self-signed unless a SignerCert/SignerKey pair is supplied.
func GenerateCertificate(config GenerateCertificateConfig) (certPEM, keyPEM []byte, err error) {
	if config.CA && config.ServerHost != "" {
		return nil, nil, newErrf(KindInvalidConfig, "a CA certificate cannot also be a server certificate")
	}
	if (len(config.SignerCert) == 0) != (len(config.SignerKey) == 0) {
		return nil, nil, newErrf(KindInvalidConfig, "signer cert and signer key must be both present or both absent")
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, newErr(KindKeyGeneration, err)
	}

	cert, err := certificateTemplate(config)
	if err != nil {
		return nil, nil, err
	}

	parentCert, parentPriv := cert, priv
	if len(config.SignerCert) > 0 {
		parentCert, parentPriv, err = parseSigner(config.SignerCert, config.SignerKey)
		if err != nil {
			return nil, nil, err
		}
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, cert, parentCert, &priv.PublicKey, parentPriv)
	if err != nil {
		return nil, nil, newErr(KindCertCreation, err)
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certBytes})

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, newErr(KindKeyMarshal, err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	return certPEM, keyPEM, nil
}

// certificateTemplate builds the unsigned x509.Certificate describing what
// config asks for: a one-year validity window backdated by a day (to
// tolerate modest clock skew between the generating host and whoever first
// verifies it), a fresh random serial, and the CA/server/client key-usage
// bits that follow from config's fields.
func certificateTemplate(config GenerateCertificateConfig) (*x509.Certificate, error) {
	now := time.Now()
	cert := &x509.Certificate{
		NotBefore:             now.Add(-24 * time.Hour),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  config.CA,
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, newErr(KindSerialNumber, err)
	}
	cert.SerialNumber = serial

	if config.OU != "" {
		cert.Subject.OrganizationalUnit = []string{config.OU}
	}

	switch {
	case config.CA:
		cert.KeyUsage |= x509.KeyUsageCertSign
	case config.ServerHost != "":
		cert.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
		cert.Subject.CommonName = config.ServerHost
		if ip := net.ParseIP(config.ServerHost); ip != nil {
			cert.IPAddresses = []net.IP{ip}
		} else {
			cert.DNSNames = []string{config.ServerHost}
		}
	default:
		cert.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	}
	return cert, nil
}

// parseSigner decodes a signer cert/key PEM pair so GenerateCertificate can
// issue a certificate under it instead of self-signing.
func parseSigner(signerCertPEM, signerKeyPEM []byte) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	certBlock, _ := pem.Decode(signerCertPEM)
	if certBlock == nil {
		return nil, nil, newErrf(KindSigner, "no PEM block found in signer certificate")
	}
	signerCert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, newErr(KindSigner, err)
	}

	keyBlock, _ := pem.Decode(signerKeyPEM)
	if keyBlock == nil {
		return nil, nil, newErrf(KindSigner, "no PEM block found in signer key")
	}
	keyIface, err := x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, nil, newErr(KindSigner, err)
	}
	signerKey, ok := keyIface.(*ecdsa.PrivateKey)
	if !ok {
		return nil, nil, newErrf(KindSigner, "signer key is %T, not an ECDSA private key", keyIface)
	}
	return signerCert, signerKey, nil
}
