package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockwatch/spawnerd/internal/certutil"
)

func genCertCmd() *cobra.Command {
	var (
		outCert    string
		outKey     string
		signerCert string
		signerKey  string
		ou         string
		isCA       bool
		serverHost string
	)
	cmd := &cobra.Command{
		Use:   "gen-cert",
		Short: "Generate an ECDSA P-256 certificate for the daemon or a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := certutil.GenerateCertificateConfig{
				OU:         ou,
				CA:         isCA,
				ServerHost: serverHost,
			}
			if signerCert != "" || signerKey != "" {
				var err error
				if cfg.SignerCert, err = os.ReadFile(signerCert); err != nil {
					return fmt.Errorf("reading signer cert: %w", err)
				}
				if cfg.SignerKey, err = os.ReadFile(signerKey); err != nil {
					return fmt.Errorf("reading signer key: %w", err)
				}
			}
			certPEM, keyPEM, err := certutil.GenerateCertificate(cfg)
			if err != nil {
				return fmt.Errorf("generating certificate: %w", err)
			}
			if err := os.WriteFile(outCert, certPEM, 0o644); err != nil {
				return fmt.Errorf("writing cert: %w", err)
			}
			if err := os.WriteFile(outKey, keyPEM, 0o600); err != nil {
				return fmt.Errorf("writing key: %w", err)
			}
			fmt.Printf("wrote %s and %s\n", outCert, outKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&outCert, "out-cert", "cert.pem", "output path for the certificate PEM")
	cmd.Flags().StringVar(&outKey, "out-key", "key.pem", "output path for the private key PEM")
	cmd.Flags().StringVar(&signerCert, "signer-cert", "", "path to a signer certificate PEM (self-signed if omitted)")
	cmd.Flags().StringVar(&signerKey, "signer-key", "", "path to a signer private key PEM (self-signed if omitted)")
	cmd.Flags().StringVar(&ou, "ou", "", "organizational unit to embed, used as the namespace for mTLS callers")
	cmd.Flags().BoolVar(&isCA, "ca", false, "generate a CA certificate instead of a leaf certificate")
	cmd.Flags().StringVar(&serverHost, "server-host", "", "IP or DNS name, marks this as a server certificate")
	return cmd
}
