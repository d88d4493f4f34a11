package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type component struct {
	SKU      string
	Quantity int64
}

type bundleSpec struct {
	SKU        string
	Name       string
	Components []component
}

var expectedHeader = []string{"bundle_sku", "bundle_name", "component_sku", "quantity"}

// decodeReader convierte la entrada a UTF-8 según charset.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado: %q", charset)
	}
}

// parseBOM agrupa las filas por bundle_sku en orden de aparición. Un componente repetido suma cantidades.
func parseBOM(r io.Reader) ([]bundleSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // BOM de UTF-8 de Excel
	cr := csv.NewReader(bytes.NewReader(data))
	if line, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		cr.Comma = ';'
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("CSV vacío")
	}
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	if len(header) < len(expectedHeader) {
		return nil, fmt.Errorf("encabezado inválido: se esperaba %s", strings.Join(expectedHeader, ","))
	}
	for i, col := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("columna %d: se esperaba %q y llegó %q", i+1, col, header[i])
		}
	}

	var out []bundleSpec
	index := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		bundleSKU, name := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		compSKU := strings.TrimSpace(rec[2])
		if bundleSKU == "" && name == "" && compSKU == "" {
			continue
		}
		if bundleSKU == "" || compSKU == "" {
			return nil, fmt.Errorf("línea %d: bundle_sku y component_sku son obligatorios", line)
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[3])
		}

		i, ok := index[bundleSKU]
		if !ok {
			if name == "" {
				name = bundleSKU
			}
			out = append(out, bundleSpec{SKU: bundleSKU, Name: name})
			i = len(out) - 1
			index[bundleSKU] = i
		}
		b := &out[i]
		merged := false
		for j := range b.Components {
			if b.Components[j].SKU == compSKU {
				b.Components[j].Quantity += qty
				merged = true
				break
			}
		}
		if !merged {
			b.Components = append(b.Components, component{SKU: compSKU, Quantity: qty})
		}
	}
	if len(out) == 0 {
		return nil, errors.New("el CSV no tiene filas")
	}
	return out, nil
}

// renderSQL escribe un bloque transaccional; cada componente se resuelve por SKU dentro de la empresa.
// Los componentes cuyo SKU no existe quedan fuera por el JOIN.
func renderSQL(w io.Writer, companyID int64, bundles []bundleSpec) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Listas de materiales de la empresa %d\n", companyID)
	fmt.Fprintf(bw, "-- Generado por seed_bom\n\nBEGIN;\n\n")
	for _, b := range bundles {
		fmt.Fprintf(bw, "-- %s\n", b.SKU)
		fmt.Fprintf(bw, "WITH b AS (\n  INSERT INTO bundles (company_id, sku, name) VALUES (%d, '%s', '%s') RETURNING id\n)\n",
			companyID, escapeSQL(b.SKU), escapeSQL(b.Name))
		bw.WriteString("INSERT INTO bundle_items (bundle_id, product_id, quantity)\nSELECT b.id, p.id, v.qty\nFROM b\nCROSS JOIN (VALUES\n")
		for i, c := range b.Components {
			sep := ","
			if i == len(b.Components)-1 {
				sep = ""
			}
			fmt.Fprintf(bw, "  ('%s', %d)%s\n", escapeSQL(c.SKU), c.Quantity, sep)
		}
		fmt.Fprintf(bw, ") AS v (sku, qty)\nJOIN products p ON p.company_id = %d AND p.sku = v.sku;\n\n", companyID)
	}
	bw.WriteString("COMMIT;\n")
	return bw.Flush()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
