package mongo

import (
	"testing"

	bookingrepo "visitly/internal/bookings/repository"
	calendarrepo "visitly/internal/calendar/repository"
	catalogrepo "visitly/internal/catalog/repository"
	staffrepo "visitly/internal/staff/repository"
	tenantrepo "visitly/internal/tenants/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverRepositories(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Collections() {
		assert.False(t, names[c.Name], "duplicate collection %s", c.Name)
		names[c.Name] = true
	}

	for _, name := range []string{
		tenantrepo.CollectionName,
		catalogrepo.ServicesCollection,
		catalogrepo.CustomersCollection,
		staffrepo.StaffCollection,
		staffrepo.CapabilitiesCollection,
		staffrepo.SchedulesCollection,
		calendarrepo.BusinessHoursCollection,
		calendarrepo.BlockedDatesCollection,
		bookingrepo.CollectionName,
		bookingrepo.LocksCollection,
		bookingrepo.VersionsCollection,
	} {
		assert.True(t, names[name], "collection %s is not migrated", name)
	}
}

func TestStaffLocks_ExpireByTTL(t *testing.T) {
	require.Len(t, StaffLocksIndexes, 1)
	idx := StaffLocksIndexes[0]
	assert.Equal(t, bson.D{{Key: "expires_at", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}

func TestBookingValidator_RequiresRevision(t *testing.T) {
	schema := bookingsSchema(t)
	assert.Contains(t, schema["required"], "revision")
}

func bookingsSchema(t *testing.T) bson.M {
	t.Helper()
	for _, c := range Collections() {
		if c.Name == bookingrepo.CollectionName {
			schema, ok := c.Validator["$jsonSchema"].(bson.M)
			require.True(t, ok)
			return schema
		}
	}
	t.Fatal("bookings collection missing")
	return nil
}
