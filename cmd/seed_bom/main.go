// seed_bom genera el SQL que carga listas de materiales (bundles y bundle_items) desde un CSV.
//
// Columnas: bundle_sku, bundle_name, component_sku, quantity. Se acepta ',' o ';' como separador
// y archivos en UTF-8 o ISO-8859-1 (exportaciones de Excel).
//
// Uso: go run ./cmd/seed_bom --company 1 [--charset iso-8859-1] [--out bom.sql] bom.csv
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		companyID int64
		charset   string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:          "seed_bom CSV",
		Short:        "Genera SQL de listas de materiales desde un CSV",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID <= 0 {
				return fmt.Errorf("--company es obligatorio")
			}
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer in.Close()

			r, err := decodeReader(in, charset)
			if err != nil {
				return err
			}
			bundles, err := parseBOM(r)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("crear archivo: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := renderSQL(out, companyID, bundles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Generado: %d listas de materiales\n", len(bundles))
			return nil
		},
	}
	cmd.Flags().Int64Var(&companyID, "company", 0, "ID de la empresa dueña de los productos")
	cmd.Flags().StringVar(&charset, "charset", "utf-8", "Codificación del CSV: utf-8 o iso-8859-1")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Archivo de salida (defecto: stdout)")
	return cmd
}
