package accessdata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

func Test_Region_Valid(t *testing.T) {
	assert.True(t, RegionEU.Valid())
	assert.True(t, RegionUS.Valid())
	assert.False(t, Region("APAC").Valid())
	assert.False(t, Region("").Valid())
}

func Test_CountByRegion_Counts_Every_Known_Region(t *testing.T) {
	// arrange
	persons := []Person{
		{Region: RegionEU},
		{Region: RegionEU},
		{Region: RegionUS},
	}

	// act
	counts := CountByRegion(persons, func(p Person) Region { return p.Region })

	// assert
	assert.Equal(t, 2, counts[RegionEU])
	assert.Equal(t, 1, counts[RegionUS])
}

func Test_CountByRegion_When_Empty_Reports_Zero_For_All_Regions(t *testing.T) {
	counts := CountByRegion([]Person{}, func(p Person) Region { return p.Region })

	assert.Len(t, counts, len(Regions))
	assert.Equal(t, 0, counts[RegionEU])
	assert.Equal(t, 0, counts[RegionUS])
}

func Test_GetConsistencyLevel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StrongConsistency, GetConsistencyLevel(ctx), "default must be strong")
	assert.Equal(t, EventualConsistency, GetConsistencyLevel(WithEventualConsistency(ctx)))
	assert.Equal(t, StrongConsistency, GetConsistencyLevel(WithStrongConsistency(WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", EventualConsistency.String())
	assert.Equal(t, "strong", StrongConsistency.String())
}
