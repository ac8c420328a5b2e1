package loader

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-manager-go/db"
	"student-manager-go/form"
	"student-manager-go/store"
)

func TestGeneratedStudentsPassFormValidation(t *testing.T) {
	for _, st := range GenerateStudentList(50) {
		_, err := form.Parse(form.Values{
			Name:    st.Name,
			Age:     strconv.Itoa(st.Age),
			Address: st.Address,
			Class:   st.Class,
		})
		require.NoError(t, err, "%+v", st)
		assert.GreaterOrEqual(t, st.Age, 6)
		assert.Less(t, st.Age, 19)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	records := store.New(ctx, db.NewMemoryPersistence())

	n, err := SeedIfEmpty(ctx, records, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, records.Len())

	n, err = SeedIfEmpty(ctx, records, 5)
	require.NoError(t, err)
	assert.Zero(t, n, "existing data is left alone")
	assert.Equal(t, 5, records.Len())
}

func TestSeedZero(t *testing.T) {
	ctx := context.Background()
	records := store.New(ctx, db.NewMemoryPersistence())
	n, err := SeedIfEmpty(ctx, records, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
