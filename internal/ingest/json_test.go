package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"panrgp/pkg/domain"
)

const sampleJSON = `{
  "organisms": [
    {"name": "orgA", "contigs": [
      {"name": "chr1", "circular": true, "genes": [
        {"id": "a0", "family_id": "F0", "position": 7, "start": 1, "stop": 900},
        {"id": "a1", "family_id": "F9", "start": 1001, "stop": 1900}
      ]}
    ]}
  ],
  "families": [
    {"id": "F0", "partition": "P"}
  ]
}`

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, d.Organisms, 1)
	org := d.Organisms[0]
	require.Equal(t, "orgA", org.ID)
	require.True(t, org.Contigs[0].Circular)
	require.Equal(t, 0, org.Contigs[0].Genes[0].Position)
	require.Equal(t, 1, org.Contigs[0].Genes[1].Position)
	require.Equal(t, []domain.Family{
		{Base: domain.Base{ID: "F0"}, Name: "F0", Partition: domain.PartitionPersistent},
		{Base: domain.Base{ID: "F9"}, Name: "F9"},
	}, d.Families)
}

func TestReadJSONErrors(t *testing.T) {
	cases := map[string]string{
		"malformed":          `{"organisms": [`,
		"unnamed organism":   `{"organisms": [{"contigs": []}]}`,
		"duplicate organism": `{"organisms": [{"name": "a"}, {"name": "a"}]}`,
		"family without id":  `{"families": [{"partition": "shell"}]}`,
		"duplicate family":   `{"families": [{"id": "F"}, {"id": "F"}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(in))
			require.Error(t, err)
		})
	}
}
