package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mrinal-Agrawal21/veera-app/pkg/tlsutil"
)

var certsFlags struct {
	outDir string
	hosts  []string
}

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Write a development CA and gRPC server certificate",
	Long: "certs writes ca.pem, server.pem and server-key.pem for local TLS testing.\n" +
		"Point GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE at the server files.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		certs, err := tlsutil.WriteDevCertificates(certsFlags.hosts, certsFlags.outDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "CA:          %s\n", certs.CAFile)
		fmt.Fprintf(out, "certificate: %s\n", certs.CertFile)
		fmt.Fprintf(out, "key:         %s\n", certs.KeyFile)
		return nil
	},
}

func init() {
	f := certsCmd.Flags()
	f.StringVarP(&certsFlags.outDir, "out", "o", "certs", "Output directory")
	f.StringSliceVar(&certsFlags.hosts, "host", []string{"localhost", "127.0.0.1"}, "Host names and IPs for the server certificate")
}
