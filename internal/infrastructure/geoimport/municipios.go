// Package geoimport lee el catálogo oficial de municipios (Municipios.xml, ISO-8859-1)
// y lo agrupa por departamento para cargarlo en el registro de cuentas.
package geoimport

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

// Department departamento con sus ciudades, ordenadas por nombre.
type Department struct {
	Code   string
	Name   string
	Cities []string
}

// Parse decodifica el XML. Los registros sin código o sin departamento se ignoran.
// El resultado se ordena por código de departamento para que la carga sea estable.
func Parse(r io.Reader) ([]Department, error) {
	var p parametros
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("geoimport: decodificar XML: %w", err)
	}

	byCode := make(map[string]*Department)
	seen := make(map[string]struct{})
	for _, v := range p.Tabla.Valores {
		name := strings.TrimSpace(v.Nombre)
		code := strings.TrimSpace(v.Otro.Codigo)
		if v.Cod == "" || name == "" || code == "" || v.Otro.Valor == "" {
			continue
		}
		d, ok := byCode[code]
		if !ok {
			d = &Department{Code: code, Name: strings.TrimSpace(v.Otro.Valor)}
			byCode[code] = d
		}
		key := code + "|" + name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		d.Cities = append(d.Cities, name)
	}

	out := make([]Department, 0, len(byCode))
	for _, d := range byCode {
		sort.Strings(d.Cities)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
