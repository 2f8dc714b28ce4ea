package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"autoparc/internal/models"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:seed_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := AutoMigrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func TestSeedIdempotent(t *testing.T) {
	dbi := setupSeedDB(t)
	require.NoError(t, Seed(dbi))

	var permCount, profileCount int64
	require.NoError(t, dbi.Model(&models.Permission{}).Count(&permCount).Error)
	require.NoError(t, dbi.Model(&models.Profile{}).Count(&profileCount).Error)
	assert.Equal(t, int64(6), profileCount)

	require.NoError(t, Seed(dbi))
	var permCount2, profileCount2 int64
	require.NoError(t, dbi.Model(&models.Permission{}).Count(&permCount2).Error)
	require.NoError(t, dbi.Model(&models.Profile{}).Count(&profileCount2).Error)
	assert.Equal(t, permCount, permCount2)
	assert.Equal(t, profileCount, profileCount2)
}

func TestSeedProfiles(t *testing.T) {
	dbi := setupSeedDB(t)
	require.NoError(t, Seed(dbi))

	permsOf := func(name string) map[string]bool {
		var profile models.Profile
		require.NoError(t, dbi.Preload("Permissions").Where("name = ?", name).First(&profile).Error)
		out := make(map[string]bool, len(profile.Permissions))
		for _, p := range profile.Permissions {
			out[p.ResourceType+":"+p.Action] = true
		}
		return out
	}

	gerant := permsOf("gerant")
	assert.True(t, gerant["*:*"])

	magasinier := permsOf("magasinier")
	assert.True(t, magasinier["conteneur:cascade"])
	assert.True(t, magasinier["conteneur:advance:ARRIVE"])
	assert.True(t, magasinier["commande:advance:VERIFIER"])
	assert.False(t, magasinier["commande:advance:VENTE"], "selling is not warehouse work")

	chef := permsOf("chef-usine")
	assert.True(t, chef["commande:advance:CORRECTION"])
	assert.True(t, chef["commande:advance:MONTAGE"])
	assert.False(t, chef["conteneur:cascade"])

	commercial := permsOf("commercial")
	assert.True(t, commercial["commande:create"])
	assert.True(t, commercial["commande:advance:VENTE"])
	assert.False(t, commercial["commande:advance:MONTAGE"])
}

func TestSeedKeepsRuntimeEdits(t *testing.T) {
	dbi := setupSeedDB(t)
	require.NoError(t, Seed(dbi))

	var profile models.Profile
	require.NoError(t, dbi.Preload("Permissions").Where("name = ?", "superviseur").First(&profile).Error)
	require.NoError(t, dbi.Model(&profile).Association("Permissions").Clear())

	require.NoError(t, Seed(dbi))
	var after models.Profile
	require.NoError(t, dbi.Preload("Permissions").Where("name = ?", "superviseur").First(&after).Error)
	assert.Empty(t, after.Permissions, "reseeding must not overwrite admin edits")
}
