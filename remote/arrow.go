package remote

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

const arrowBackend = "arrow results"

// SchemaFromArrow converts an Arrow schema into a schema.
func SchemaFromArrow(s *arrow.Schema) (sql.Schema, error) {
	schema := make(sql.Schema, s.NumFields())
	for i, f := range s.Fields() {
		t, err := TypeFromArrow(f.Type)
		if err != nil {
			return nil, err
		}
		schema[i] = &sql.Column{Name: f.Name, Type: t, Nullable: f.Nullable}
	}
	return schema, nil
}

// TypeFromArrow converts an Arrow data type into a type.
func TypeFromArrow(dt arrow.DataType) (sql.Type, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return sql.Boolean, nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return sql.Int64, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return sql.Float64, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return sql.String, nil
	case arrow.DATE32, arrow.DATE64:
		return sql.Date, nil
	case arrow.TIMESTAMP:
		return sql.Timestamp, nil
	case arrow.STRUCT:
		st := dt.(*arrow.StructType)
		fields := make([]sql.StructField, st.NumFields())
		for i, f := range st.Fields() {
			t, err := TypeFromArrow(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = sql.StructField{Name: f.Name, Type: t}
		}
		return sql.CreateStruct(fields...)
	case arrow.LIST, arrow.LARGE_LIST:
		elem, err := TypeFromArrow(dt.(arrow.ListLikeType).Elem())
		if err != nil {
			return nil, err
		}
		return sql.CreateArray(elem), nil
	default:
		return nil, sql.ErrUnsupportedBackendType.New(dt, arrowBackend)
	}
}

// arrowValue returns the value at the given position of an Arrow array in a
// form sql.Decode understands.
func arrowValue(col arrow.Array, i int) (interface{}, error) {
	if col.IsNull(i) {
		return nil, nil
	}

	switch a := col.(type) {
	case *array.Boolean:
		return a.Value(i), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Float32:
		return float64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Date32:
		return a.Value(i).ToTime(), nil
	case *array.Date64:
		return a.Value(i).ToTime(), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit), nil
	case *array.Struct:
		st := a.DataType().(*arrow.StructType)
		fields := make(map[string]interface{}, a.NumField())
		for j := 0; j < a.NumField(); j++ {
			v, err := arrowValue(a.Field(j), i)
			if err != nil {
				return nil, err
			}
			fields[st.Field(j).Name] = v
		}
		return fields, nil
	case *array.List:
		start, end := a.ValueOffsets(i)
		return listValues(a.ListValues(), start, end)
	case *array.LargeList:
		start, end := a.ValueOffsets(i)
		return listValues(a.ListValues(), start, end)
	default:
		return nil, sql.ErrUnsupportedBackendType.New(col.DataType(), arrowBackend)
	}
}

func listValues(values arrow.Array, start, end int64) ([]interface{}, error) {
	items := make([]interface{}, 0, end-start)
	for k := start; k < end; k++ {
		v, err := arrowValue(values, int(k))
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func defaultColumnName(i int) string {
	return fmt.Sprintf("f%d_", i)
}
