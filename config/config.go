// Package config declares the subgraph data model from spec.md §3: entities,
// fields, data sources, and operation kinds. Parsing these types out of a
// configuration file is an external collaborator's job (spec.md §1); this
// package owns only the types and the invariants a Schema Synthesizer or
// Input Compiler needs to trust once they are loaded.
package config

import "fmt"

// Scalar identifies the scalar kind of a Field, mirroring the Intermediate
// Value sum type one-to-one except for Object, which carries nested Fields
// instead of being a leaf.
type Scalar string

const (
	ScalarString   Scalar = "String"
	ScalarInt      Scalar = "Int"
	ScalarBoolean  Scalar = "Boolean"
	ScalarObjectID Scalar = "ObjectID"
	ScalarUUID     Scalar = "UUID"
	ScalarDateTime Scalar = "DateTime"
	ScalarObject   Scalar = "Object"
	ScalarEnum     Scalar = "Enum"
)

// OperationKind enumerates the operation kinds of spec.md §3.
type OperationKind string

const (
	FindOne      OperationKind = "FindOne"
	FindMany     OperationKind = "FindMany"
	CreateOne    OperationKind = "CreateOne"
	UpdateOne    OperationKind = "UpdateOne"
	UpdateMany   OperationKind = "UpdateMany"
	InternalType OperationKind = "InternalType"
)

// Dialect identifies a SQL data source's dialect.
type Dialect string

const (
	Postgres Dialect = "Postgres"
	MySQL    Dialect = "MySql"
	SQLite   Dialect = "Sqlite"
)

// Field is a single entity field declaration (spec.md §3).
type Field struct {
	Name string `yaml:"name"`
	// Scalar is the leaf scalar kind, or ScalarObject when Fields is set.
	Scalar Scalar `yaml:"scalar"`
	// List marks a list-typed field (IN / $in semantics in predicates).
	List bool `yaml:"list,omitempty"`
	// Required marks a field non-null in output shapes and, for CreateOne
	// values only, non-optional in the input shape.
	Required bool `yaml:"required,omitempty"`
	// Fields holds nested field declarations when Scalar == ScalarObject.
	Fields []Field `yaml:"fields,omitempty"`

	// AsType names another entity this field resolves to via a secondary
	// lookup (the "as-type" mechanism, spec.md §4.4).
	AsType string `yaml:"as_type,omitempty"`
	// JoinOn names the field on the parent entity whose value constrains
	// the as-type lookup. Required when AsType is set.
	JoinOn string `yaml:"join_on,omitempty"`

	// Default is materialized by the SQL/Document compilers for CreateOne
	// when the field is absent from the values input.
	Default any `yaml:"default,omitempty"`

	// Virtual fields are surface-only: present in the output shape, never
	// written to a backend (spec.md §3 invariant 5).
	Virtual bool `yaml:"virtual,omitempty"`

	// ExcludeFromInput / ExcludeFromOutput scope which operation kinds a
	// field participates in. Empty means "participates in all".
	ExcludeFromInput  []OperationKind `yaml:"exclude_from_input,omitempty"`
	ExcludeFromOutput []OperationKind `yaml:"exclude_from_output,omitempty"`
}

// ExcludedFromInput reports whether the field should be omitted from the
// input shape of the given operation kind.
func (f Field) ExcludedFromInput(kind OperationKind) bool {
	for _, k := range f.ExcludeFromInput {
		if k == kind {
			return true
		}
	}
	return false
}

// ExcludedFromOutput reports whether the field should be omitted from the
// output shape of the given operation kind.
func (f Field) ExcludedFromOutput(kind OperationKind) bool {
	for _, k := range f.ExcludeFromOutput {
		if k == kind {
			return true
		}
	}
	return false
}

// IsAsType reports whether this field resolves via a cross-source lookup.
func (f Field) IsAsType() bool { return f.AsType != "" }

// SQLDataSource is the Sql{dialect, uri, migrations_path} variant.
type SQLDataSource struct {
	Dialect        Dialect `yaml:"dialect"`
	URI            string  `yaml:"uri"`
	MigrationsPath string  `yaml:"migrations_path,omitempty"`
}

// DocumentDataSource is the Document{uri, db} variant.
type DocumentDataSource struct {
	URI string `yaml:"uri"`
	DB  string `yaml:"db"`
}

// HTTPDataSource is the Http{base_url, default_headers?} variant.
type HTTPDataSource struct {
	BaseURL        string            `yaml:"base_url"`
	DefaultHeaders map[string]string `yaml:"default_headers,omitempty"`
}

// DataSourceKind tags which variant a DataSource holds.
type DataSourceKind string

const (
	DataSourceSQL      DataSourceKind = "Sql"
	DataSourceDocument DataSourceKind = "Document"
	DataSourceHTTP     DataSourceKind = "Http"
)

// DataSource is the tagged variant described in spec.md §3. Exactly one of
// SQL, Document, HTTP is populated, matching Kind.
type DataSource struct {
	Name string         `yaml:"name"`
	Kind DataSourceKind `yaml:"kind"`

	SQL      *SQLDataSource      `yaml:"sql,omitempty"`
	Document *DocumentDataSource `yaml:"document,omitempty"`
	HTTP     *HTTPDataSource     `yaml:"http,omitempty"`
}

// Validate checks that exactly the variant named by Kind is populated.
func (d DataSource) Validate() error {
	switch d.Kind {
	case DataSourceSQL:
		if d.SQL == nil {
			return fmt.Errorf("config: data source %q: kind Sql requires sql block", d.Name)
		}
	case DataSourceDocument:
		if d.Document == nil {
			return fmt.Errorf("config: data source %q: kind Document requires document block", d.Name)
		}
	case DataSourceHTTP:
		if d.HTTP == nil {
			return fmt.Errorf("config: data source %q: kind Http requires http block", d.Name)
		}
	default:
		return fmt.Errorf("config: data source %q: unknown kind %q", d.Name, d.Kind)
	}
	return nil
}

// Auth is an inert, opaque-to-the-core config block carried alongside a
// data source, supplementing the Rust original's
// src/configuration/subgraph/auth — nothing in the core reads it; it is
// not passed to the guard package either.
type Auth struct {
	// TokenHeader names the HTTP header (or equivalent transport field)
	// the opaque token is read from by an external collaborator.
	TokenHeader string `yaml:"token_header,omitempty"`
	// Required, when true, signals that downstream guards should deny
	// requests with no token present. The core never reads this flag.
	Required bool `yaml:"required,omitempty"`
}

// Entity is a named record bound to one data source (spec.md §3).
type Entity struct {
	Name       string  `yaml:"name"`
	DataSource string  `yaml:"data_source"`
	Table      string  `yaml:"table,omitempty"`
	Required   bool    `yaml:"required,omitempty"`
	Fields     []Field `yaml:"fields"`
	Auth       *Auth   `yaml:"auth,omitempty"`

	// PrimaryKeyField names the field a MySQL/SQLite CreateOne re-fetch
	// (spec.md §3 invariant 3) looks the new row up by. Defaults to "id".
	// The Document CreateOne re-fetch uses the inserted "_id" instead.
	PrimaryKeyField string `yaml:"primary_key,omitempty"`

	// PathParams / SearchQuery are entity-level defaults for HTTP URL
	// templating (spec.md §6): substituted into {name} placeholders before
	// operation-level path params and the request's query input.
	PathParams  map[string]string `yaml:"path_params,omitempty"`
	SearchQuery map[string]string `yaml:"search_query,omitempty"`

	// HTTPMethod overrides the default Update* method (PUT) per spec.md §6.
	HTTPMethod string `yaml:"http_method,omitempty"`

	// URL is the templated endpoint for an Http-backed entity, e.g.
	// "https://x/todos/{id}".
	URL string `yaml:"url,omitempty"`
}

// PrimaryKey returns PrimaryKeyField, defaulting to "id" when unset.
func (e Entity) PrimaryKey() string {
	if e.PrimaryKeyField != "" {
		return e.PrimaryKeyField
	}
	return "id"
}

// FieldByName looks up a top-level field by name.
func (e Entity) FieldByName(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Subgraph is the top-level parsed configuration handed to the Schema
// Synthesizer: `{service: {entities: [...], data_sources: [...]}}`.
type Subgraph struct {
	Service ServiceConfig `yaml:"service"`
}

// ServiceConfig holds one subgraph's entities and data sources.
type ServiceConfig struct {
	Entities    []Entity     `yaml:"entities"`
	DataSources []DataSource `yaml:"data_sources"`
}

// DataSourceByName looks up a configured data source by name.
func (s ServiceConfig) DataSourceByName(name string) (DataSource, bool) {
	for _, d := range s.DataSources {
		if d.Name == name {
			return d, true
		}
	}
	return DataSource{}, false
}

// EntityByName looks up a configured entity by name.
func (s ServiceConfig) EntityByName(name string) (Entity, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}
