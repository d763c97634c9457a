package resolver

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/dialect"
	"github.com/the-devoyage/subgraph-go/dialect/httpds"
	sqldialect "github.com/the-devoyage/subgraph-go/dialect/sql"
)

func projectEntity() config.Entity {
	return config.Entity{
		Name:       "project",
		DataSource: "projects_api",
		URL:        "/projects/{id}",
		Fields: []config.Field{
			{Name: "id", Scalar: config.ScalarInt, Required: true},
			{Name: "lead_id", Scalar: config.ScalarInt},
			{Name: "reviewer_id", Scalar: config.ScalarInt},
			{Name: "lead", Scalar: config.ScalarObject, AsType: "user", JoinOn: "lead_id"},
			{Name: "reviewer", Scalar: config.ScalarObject, AsType: "user", JoinOn: "reviewer_id"},
			{Name: "members", Scalar: config.ScalarObject, List: true, AsType: "member", JoinOn: "id"},
		},
	}
}

func memberEntity() config.Entity {
	return config.Entity{
		Name:       "member",
		DataSource: "members_api",
		URL:        "/members",
		Fields: []config.Field{
			{Name: "id", Scalar: config.ScalarInt, Required: true},
			{Name: "name", Scalar: config.ScalarString, Required: true},
		},
	}
}

func crossSourceSubgraph() config.Subgraph {
	return config.Subgraph{Service: config.ServiceConfig{
		Entities: []config.Entity{projectEntity(), userEntity(), memberEntity()},
		DataSources: []config.DataSource{
			{Name: "projects_api", Kind: config.DataSourceHTTP, HTTP: &config.HTTPDataSource{BaseURL: "https://x"}},
			{Name: "users_api", Kind: config.DataSourceHTTP, HTTP: &config.HTTPDataSource{BaseURL: "https://x"}},
			{Name: "members_api", Kind: config.DataSourceHTTP, HTTP: &config.HTTPDataSource{BaseURL: "https://x"}},
		},
	}}
}

// routingHTTPClient dispatches by request path prefix instead of by call
// order, since sibling as-type lookups run concurrently and the order
// their requests actually hit the client is not guaranteed.
type routingHTTPClient struct {
	byPath map[string]string // path prefix -> JSON body
}

func (r *routingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	for prefix, body := range r.byPath {
		if strings.HasPrefix(req.URL.Path+"?"+req.URL.RawQuery, prefix) || strings.HasPrefix(req.URL.String(), prefix) {
			return jsonResponse(body), nil
		}
	}
	return jsonResponse(`{}`), nil
}

func TestCrossSource_SiblingAsTypeFieldsPreserveDeclarationOrder(t *testing.T) {
	client := &routingHTTPClient{byPath: map[string]string{
		"https://x/projects/1":            `{"id": 1, "lead_id": 10, "reviewer_id": 20}`,
		"https://x/users?lead_id=10":       `{"owner_id": 10, "name": "Lead"}`,
		"https://x/users?reviewer_id=20":   `{"owner_id": 20, "name": "Reviewer"}`,
	}}
	d := &Dispatcher{
		Config: crossSourceSubgraph(),
		HTTPClients: map[string]httpds.HTTPClient{
			"projects_api": client,
			"users_api":    client,
			"members_api":  client,
		},
	}
	res, err := d.Resolve(context.Background(), nil, "project", config.FindOne, Input{
		OpParams:  map[string]string{"id": "1"},
		Selection: []string{"id", "lead", "reviewer"},
	})
	require.NoError(t, err)
	lead, ok := res.Row["lead"].ObjectValue()
	require.True(t, ok)
	reviewer, ok := res.Row["reviewer"].ObjectValue()
	require.True(t, ok)
	leadName, _ := lead["name"].String()
	reviewerName, _ := reviewer["name"].String()
	assert.Equal(t, "Lead", leadName)
	assert.Equal(t, "Reviewer", reviewerName)
}

func TestCrossSource_ListAsTypeFindMany(t *testing.T) {
	client := &routingHTTPClient{byPath: map[string]string{
		"https://x/projects/1": `{"id": 1}`,
		"https://x/members?id=1": `[{"id": 1, "name": "Ada"}, {"id": 1, "name": "Bo"}]`,
	}}
	d := &Dispatcher{
		Config: crossSourceSubgraph(),
		HTTPClients: map[string]httpds.HTTPClient{
			"projects_api": client,
			"users_api":    client,
			"members_api":  client,
		},
	}
	res, err := d.Resolve(context.Background(), nil, "project", config.FindOne, Input{
		OpParams:  map[string]string{"id": "1"},
		Selection: []string{"id", "members"},
	})
	require.NoError(t, err)
	members, ok := res.Row["members"].ListValue()
	require.True(t, ok)
	require.Len(t, members, 2)
	n0, _ := members[0].ObjectValue()
	name0, _ := n0["name"].String()
	assert.Equal(t, "Ada", name0)
}

func garageEntitySQL() config.Entity {
	return config.Entity{
		Name:       "garage",
		DataSource: "pg",
		Table:      "garages",
		Fields: []config.Field{
			{Name: "id", Scalar: config.ScalarUUID, Required: true},
			{Name: "car_id", Scalar: config.ScalarUUID},
			{Name: "car", Scalar: config.ScalarObject, AsType: "car", JoinOn: "car_id"},
		},
	}
}

func vehicleEntitySQL() config.Entity {
	return config.Entity{
		Name:       "car",
		DataSource: "pg",
		Table:      "vehicles",
		Fields: []config.Field{
			{Name: "car_id", Scalar: config.ScalarUUID, Required: true},
			{Name: "make", Scalar: config.ScalarString, Required: true},
		},
	}
}

func garageSubgraph() config.Subgraph {
	return config.Subgraph{Service: config.ServiceConfig{
		Entities: []config.Entity{garageEntitySQL(), vehicleEntitySQL()},
		DataSources: []config.DataSource{
			{Name: "pg", Kind: config.DataSourceSQL, SQL: &config.SQLDataSource{Dialect: config.Postgres}},
		},
	}}
}

// TestCrossSource_NestedQueryMergesWithInjectedJoinKeyUnderAND exercises
// spec.md §4.4 step 4: a caller-supplied predicate for an as-type field is
// merged with the injected `K = parent_K` predicate under an implicit AND,
// never replacing it.
func TestCrossSource_NestedQueryMergesWithInjectedJoinKeyUnderAND(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sqldialect.OpenDB(dialect.Postgres, db)

	garageID := "11111111-1111-1111-1111-111111111111"
	carID := "22222222-2222-2222-2222-222222222222"

	garageCols := []*sqlmock.Column{
		sqlmock.NewColumn("id").OfType("UUID", ""),
		sqlmock.NewColumn("car_id").OfType("UUID", ""),
	}
	garageRows := sqlmock.NewRowsWithColumnDefinition(garageCols...).AddRow(garageID, carID)
	mock.ExpectQuery(`SELECT \* FROM garages WHERE id = \$1`).WillReturnRows(garageRows)

	vehicleCols := []*sqlmock.Column{
		sqlmock.NewColumn("car_id").OfType("UUID", ""),
		sqlmock.NewColumn("make").OfType("TEXT", ""),
	}
	vehicleRows := sqlmock.NewRowsWithColumnDefinition(vehicleCols...).AddRow(carID, "Volvo")
	mock.ExpectQuery(`SELECT \* FROM vehicles WHERE \(car_id = \$1 AND make = \$2\)`).WillReturnRows(vehicleRows)

	d := &Dispatcher{Config: garageSubgraph(), SQLDrivers: map[string]dialect.Driver{"pg": drv}}
	res, err := d.Resolve(context.Background(), nil, "garage", config.FindOne, Input{
		Query:     map[string]any{"id": garageID},
		Selection: []string{"id", "car_id", "car"},
		Nested: map[string]Nested{
			"car": {Query: map[string]any{"make": "Volvo"}},
		},
	})
	require.NoError(t, err)
	car, ok := res.Row["car"].ObjectValue()
	require.True(t, ok)
	make_, _ := car["make"].String()
	assert.Equal(t, "Volvo", make_)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestCrossSource_NoNestedQueryUsesOnlyInjectedPredicate confirms a
// field absent from Input.Nested keeps the pre-existing bare-join-key
// behavior (no AND wrapper, no regression for callers that never supply a
// nested predicate).
func TestCrossSource_NoNestedQueryUsesOnlyInjectedPredicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sqldialect.OpenDB(dialect.Postgres, db)

	garageID := "11111111-1111-1111-1111-111111111111"
	carID := "22222222-2222-2222-2222-222222222222"

	garageCols := []*sqlmock.Column{
		sqlmock.NewColumn("id").OfType("UUID", ""),
		sqlmock.NewColumn("car_id").OfType("UUID", ""),
	}
	garageRows := sqlmock.NewRowsWithColumnDefinition(garageCols...).AddRow(garageID, carID)
	mock.ExpectQuery(`SELECT \* FROM garages WHERE id = \$1`).WillReturnRows(garageRows)

	vehicleCols := []*sqlmock.Column{
		sqlmock.NewColumn("car_id").OfType("UUID", ""),
		sqlmock.NewColumn("make").OfType("TEXT", ""),
	}
	vehicleRows := sqlmock.NewRowsWithColumnDefinition(vehicleCols...).AddRow(carID, "Volvo")
	mock.ExpectQuery(`SELECT \* FROM vehicles WHERE car_id = \$1`).WillReturnRows(vehicleRows)

	d := &Dispatcher{Config: garageSubgraph(), SQLDrivers: map[string]dialect.Driver{"pg": drv}}
	res, err := d.Resolve(context.Background(), nil, "garage", config.FindOne, Input{
		Query:     map[string]any{"id": garageID},
		Selection: []string{"id", "car_id", "car"},
	})
	require.NoError(t, err)
	car, ok := res.Row["car"].ObjectValue()
	require.True(t, ok)
	make_, _ := car["make"].String()
	assert.Equal(t, "Volvo", make_)
	require.NoError(t, mock.ExpectationsWereMet())
}
