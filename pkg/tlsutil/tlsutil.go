// Package tlsutil loads TLS material for the gRPC health endpoint and the
// Kafka producer, and mints throwaway certificates for local development.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// ServerCredentials loads a key pair for a gRPC server. TLS 1.2 is the floor.
func ServerCredentials(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// ClientConfig returns a client TLS config. With an empty caFile the system
// roots are trusted; otherwise only the CA in caFile is.
func ClientConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}

	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("tlsutil: no certificate found in %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// DevCertificates are the files written by WriteDevCertificates.
type DevCertificates struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// WriteDevCertificates creates a development CA and a server certificate
// for hosts signed by it, and writes them as PEM files into outDir.
func WriteDevCertificates(hosts []string, outDir string) (DevCertificates, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}
	out := DevCertificates{
		CAFile:   filepath.Join(outDir, "ca.pem"),
		CertFile: filepath.Join(outDir, "server.pem"),
		KeyFile:  filepath.Join(outDir, "server-key.pem"),
	}

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: generate CA key: %w", err)
	}
	now := time.Now()
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Veera Dev CA"}},
		NotBefore:             now,
		NotAfter:              now.AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: create CA cert: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: parse CA cert: %w", err)
	}

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: generate server key: %w", err)
	}
	serverTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"Veera Dev"}},
		NotBefore:    now,
		NotAfter:     now.AddDate(0, 3, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			serverTemplate.IPAddresses = append(serverTemplate.IPAddresses, ip)
		} else {
			serverTemplate.DNSNames = append(serverTemplate.DNSNames, h)
		}
	}
	serverDER, err := x509.CreateCertificate(rand.Reader, serverTemplate, caCert, &serverKey.PublicKey, caKey)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: create server cert: %w", err)
	}
	serverKeyDER, err := x509.MarshalECPrivateKey(serverKey)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: marshal server key: %w", err)
	}

	if err := writePEM(out.CAFile, "CERTIFICATE", caDER); err != nil {
		return DevCertificates{}, err
	}
	if err := writePEM(out.CertFile, "CERTIFICATE", serverDER); err != nil {
		return DevCertificates{}, err
	}
	if err := writePEM(out.KeyFile, "EC PRIVATE KEY", serverKeyDER); err != nil {
		return DevCertificates{}, err
	}
	return out, nil
}

func writePEM(path, blockType string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		return fmt.Errorf("tlsutil: encode %s: %w", path, err)
	}
	return nil
}
