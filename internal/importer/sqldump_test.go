package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTuples(t *testing.T) {
	records := parseTuples(`(1,'ADN 1','stock',NULL),(2,'Boîte, fille','working','a\'b')`)
	require.Len(t, records, 2)
	require.Equal(t, []string{"1", "'ADN 1'", "'stock'", "NULL"}, records[0])
	require.Equal(t, []string{"2", "'Boîte, fille'", "'working'", `'a\'b'`}, records[1])
}

func TestParseTuplesQuotedParens(t *testing.T) {
	records := parseTuples(`(1,'note (old), keep')`)
	require.Len(t, records, 1)
	require.Equal(t, "'note (old), keep'", records[0][1])
}

func TestDecodeValue(t *testing.T) {
	require.Nil(t, DecodeValue("NULL"))
	require.Equal(t, "ADN 1", DecodeValue("'ADN 1'"))
	require.Equal(t, "it's", DecodeValue(`'it\'s'`))
	require.Equal(t, `back\slash`, DecodeValue(`'back\\slash'`))
	require.Equal(t, int64(42), DecodeValue("42"))
	require.Equal(t, 12.5, DecodeValue("12.5"))
	require.Equal(t, "0x1f", DecodeValue("0x1f"))
}

func TestExtractInserts(t *testing.T) {
	dump := "-- dump\n" +
		"INSERT INTO `boite` VALUES (1,'ADN 1','stock',NULL),(2,'ADN 2','stock','notes');\n" +
		"INSERT INTO `tube` VALUES (7,1,1,2,3,50.5,'OK',100,80,'sang','mere',NULL);\n" +
		"insert into `boite` VALUES (3,'ADN 3','working',NULL);\n"

	boxes, err := ExtractInserts(dump, "boite")
	require.NoError(t, err)
	require.Len(t, boxes, 3)
	require.Equal(t, "'ADN 3'", boxes[2][1])

	tubes, err := ExtractInserts(dump, "tube")
	require.NoError(t, err)
	require.Len(t, tubes, 1)
	require.Len(t, tubes[0], 12)

	none, err := ExtractInserts(dump, "arrivee")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestExtractInsertsMultiline(t *testing.T) {
	dump := "INSERT INTO `boite` VALUES (1,'ADN 1','stock',NULL),\n(2,'ADN 2','stock','ligne\ndeux');"
	boxes, err := ExtractInserts(dump, "boite")
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	require.Equal(t, "ligne\ndeux", DecodeValue(boxes[1][3]))
}
