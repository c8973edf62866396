package taxitripsdal

import (
	"reflect"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreConnURL(t *testing.T) {
	type args struct {
		str string
	}
	tests := []struct {
		name    string
		args    args
		want    StoreConnURL
		wantErr bool
	}{
		{
			name: "sqlite",
			args: args{"sqlite://yellow_taxi.db"},
			want: StoreConnURL{
				Type:           StoreTypeSQLite,
				ConnectionPath: "yellow_taxi.db",
			},
		}, {
			name: "postgresql",
			args: args{"postgresql://localhost/trips"},
			want: StoreConnURL{
				Type:           StoreTypePostgresql,
				ConnectionPath: "localhost/trips",
			},
		}, {
			name:    "no separator",
			args:    args{"yellow_taxi.db"},
			want:    StoreConnURL{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, got1 := ParseStoreConnURL(tt.args.str)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStoreConnURL() got = %v, want %v", got, tt.want)
			}
			if (got1 != nil) != tt.wantErr {
				t.Errorf("ParseStoreConnURL() got1 = %v, wantErr %v", got1, tt.wantErr)
			}
		})
	}
}

func TestStoreConnURL_String(t *testing.T) {
	u, err := ParseStoreConnURL("duckdb://data/trips.duckdb")
	require.Nil(t, err)

	assert.Equal(t, "duckdb://data/trips.duckdb", u.String())
	assert.True(t, u.Type.IsFileBacked())
	assert.False(t, StoreTypePostgresql.IsFileBacked())
}

func TestParseIfExistsMode(t *testing.T) {
	mode, err := ParseIfExistsMode("replace")
	require.Nil(t, err)
	assert.Equal(t, IfExistsModeReplace, mode)

	_, err = ParseIfExistsMode("overwrite")
	assert.Error(t, err)
}

func TestGroupCountQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   GroupCountQuery
		wantErr bool
	}{
		{"valid", GroupCountQuery{"yellow_trips", "passenger_count", 5}, false},
		{"no limit", GroupCountQuery{"yellow_trips", "passenger_count", 0}, false},
		{"negative limit", GroupCountQuery{"yellow_trips", "passenger_count", -1}, true},
		{"injection in table name", GroupCountQuery{"yellow_trips; DROP TABLE x", "passenger_count", 5}, true},
		{"quote in column", GroupCountQuery{"yellow_trips", `passenger"count`, 5}, true},
		{"empty column", GroupCountQuery{"yellow_trips", "", 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			assert.Equal(t, tt.wantErr, err != nil, errorsx.ErrWithStack(err))
		})
	}
}

func TestGroupCountQuery_SQL(t *testing.T) {
	query := &GroupCountQuery{
		TableName:     "yellow_trips",
		GroupByColumn: "passenger_count",
		Limit:         5,
	}

	assert.Equal(t,
		`SELECT "passenger_count" AS group_key, COUNT(*) AS row_count FROM "yellow_trips" GROUP BY "passenger_count" ORDER BY "passenger_count" LIMIT 5`,
		query.SQL(),
	)

	query.Limit = 0
	assert.NotContains(t, query.SQL(), "LIMIT")
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"passenger_count"`, QuoteIdentifier("passenger_count"))
	assert.Equal(t, `"trip ""id"""`, QuoteIdentifier(`trip "id"`))
}
