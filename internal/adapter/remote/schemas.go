package remote

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/*.json
var schemaFS embed.FS

type schemas struct {
	history  *jsonschema.Schema
	ticket   *jsonschema.Schema
	overview *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	c := jsonschema.NewCompiler()

	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		url := "mem://ticket-feed/" + name
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		return c.Compile(url)
	}

	var s schemas
	var err error
	if s.history, err = compile("ticket_history.json"); err != nil {
		return nil, err
	}
	if s.ticket, err = compile("ticket.json"); err != nil {
		return nil, err
	}
	if s.overview, err = compile("overview.json"); err != nil {
		return nil, err
	}
	return &s, nil
}

func validate(sch *jsonschema.Schema, raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return sch.Validate(inst)
}
