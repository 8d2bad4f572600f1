package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
)

func sampleTeam() *team.Team {
	owner := uuid.New()
	t := team.New(uuid.New(), team.TypeParty)
	t.Created(owner, time.Now())
	t.SetDisplayName("Night Watch")
	t.SetDescription("we watch")
	t.SetFreeToJoin(true)
	t.SetRank(owner, team.RankOwner)
	t.SetRank(uuid.New(), team.RankOfficer)
	return t
}

func TestTeamRoundTrip(t *testing.T) {
	for _, name := range []string{"bson", "yaml"} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			c, err := ForName(name)
			is.NoErr(err)

			orig := sampleTeam()
			data, err := EncodeTeam(c, orig)
			is.NoErr(err)

			got, err := DecodeTeam(c, data)
			is.NoErr(err)
			is.Equal(got.Record(), orig.Record())
		})
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	for _, c := range []Codec{BSON{}, YAML{}} {
		is := is.New(t)
		doc := RegistryDocument{ID: uuid.NewString()}
		data, err := EncodeRegistry(c, doc)
		is.NoErr(err)
		got, err := DecodeRegistry(c, data)
		is.NoErr(err)
		is.Equal(got, doc)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	cases := map[string]struct {
		c    Codec
		data []byte
	}{
		"bson garbage":  {BSON{}, []byte{0x01, 0x02, 0x03}},
		"yaml garbage":  {YAML{}, []byte("id: [unclosed")},
		"yaml empty":    {YAML{}, []byte("\n  \n")},
		"yaml bad type": {YAML{}, []byte("id: " + uuid.NewString() + "\ntype: guild\n")},
		"yaml unknown":  {YAML{}, []byte("id: x\nflavour: mint\n")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := DecodeTeam(tc.c, tc.data)
			is.True(errors.Is(err, ErrCorrupt))
		})
	}
}

func TestForNameUnknown(t *testing.T) {
	is := is.New(t)
	c, err := ForName("")
	is.NoErr(err)
	is.Equal(c.Name(), "bson")

	_, err = ForName("json")
	is.True(err != nil)
}
