package retification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"demandas/internal/form/models"
	dErrors "demandas/pkg/domain-errors"
)

type ChainSuite struct {
	suite.Suite
	chain *Chain
	seq   int
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainSuite))
}

func (s *ChainSuite) SetupTest() {
	s.seq = 0
	s.chain = NewChain(WithIDGenerator(func() RecordID {
		s.seq++
		return RecordID(fmt.Sprintf("r%d", s.seq))
	}))
}

func (s *ChainSuite) ids() []RecordID {
	var out []RecordID
	for _, r := range s.chain.Records() {
		out = append(out, r.ID)
	}
	return out
}

func (s *ChainSuite) TestAppend() {
	s.Run("appends blank records with fresh ids", func() {
		first := s.chain.Append()
		second := s.chain.Append()

		s.NotEqual(first, second)
		s.Equal([]RecordID{first, second}, s.ids())
		for _, r := range s.chain.Records() {
			s.Nil(r.Authority)
			s.Nil(r.Court)
			s.Empty(r.SigningDate)
			s.False(r.WasFurtherAmended)
		}
	})
}

func (s *ChainSuite) TestSetFurtherAmended() {
	s.Run("flagging the tail appends exactly one record", func() {
		first := s.chain.Append()

		change, err := s.chain.SetFurtherAmended(first, true)
		s.Require().NoError(err)

		s.Equal(2, s.chain.Len())
		s.Len(change.Added, 1)
		s.Empty(change.Removed)
		rec, pos, ok := s.chain.Find(change.Added[0])
		s.Require().True(ok)
		s.Equal(1, pos)
		s.Empty(rec.SigningDate)
	})

	s.Run("flagging a non-tail record appends nothing", func() {
		s.SetupTest()
		first := s.chain.Append()
		_, err := s.chain.SetFurtherAmended(first, true)
		s.Require().NoError(err)

		change, err := s.chain.SetFurtherAmended(first, true)
		s.Require().NoError(err)
		s.Empty(change.Added)
		s.Equal(2, s.chain.Len())
	})

	s.Run("unflagging drops every later record", func() {
		s.SetupTest()
		r1 := s.chain.Append()
		c1, _ := s.chain.SetFurtherAmended(r1, true)
		r2 := c1.Added[0]
		c2, _ := s.chain.SetFurtherAmended(r2, true)
		r3 := c2.Added[0]
		c3, _ := s.chain.SetFurtherAmended(r3, true)
		r4 := c3.Added[0]
		s.Require().Equal([]RecordID{r1, r2, r3, r4}, s.ids())

		change, err := s.chain.SetFurtherAmended(r2, false)
		s.Require().NoError(err)

		s.Equal([]RecordID{r1, r2}, s.ids())
		s.Equal([]RecordID{r3, r4}, change.Removed)
		rec, _, _ := s.chain.Find(r2)
		s.False(rec.WasFurtherAmended)
	})

	s.Run("unflagging the tail removes nothing", func() {
		s.SetupTest()
		r1 := s.chain.Append()
		change, err := s.chain.SetFurtherAmended(r1, false)
		s.Require().NoError(err)
		s.Empty(change.Removed)
		s.Equal(1, s.chain.Len())
	})

	s.Run("new ids are not reused after truncation", func() {
		s.SetupTest()
		r1 := s.chain.Append()
		c1, _ := s.chain.SetFurtherAmended(r1, true)
		dropped := c1.Added[0]
		_, _ = s.chain.SetFurtherAmended(r1, false)

		c2, _ := s.chain.SetFurtherAmended(r1, true)
		s.NotEqual(dropped, c2.Added[0])
	})

	s.Run("unknown id is not found", func() {
		_, err := s.chain.SetFurtherAmended("missing", true)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ChainSuite) TestUpdateField() {
	r1 := s.chain.Append()
	before := s.chain.Records()

	s.Require().NoError(s.chain.UpdateField(r1, SetSigningDate("15/01/2024")))
	s.Require().NoError(s.chain.UpdateField(r1, SetAuthority(&models.SearchableValue{ID: 4, DisplayName: "Juiz da 2ª Vara Criminal"})))
	s.Require().NoError(s.chain.UpdateField(r1, SetCourt(&models.SearchableValue{ID: 9, DisplayName: "TJGO"})))

	rec, _, _ := s.chain.Find(r1)
	s.Equal("15/01/2024", rec.SigningDate)
	s.Equal(4, rec.Authority.ID)
	s.Equal("TJGO", rec.Court.DisplayName)

	s.Empty(before[0].SigningDate, "earlier snapshots are not mutated")

	s.Run("update cannot rewrite identity", func() {
		err := s.chain.UpdateField(r1, func(r Record) Record {
			r.ID = "other"
			r.WasFurtherAmended = true
			return r
		})
		s.Require().NoError(err)
		rec, _, ok := s.chain.Find(r1)
		s.Require().True(ok)
		s.False(rec.WasFurtherAmended)
	})

	s.Run("unknown id is not found", func() {
		err := s.chain.UpdateField("missing", SetSigningDate("01/01/2024"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ChainSuite) TestReset() {
	r1 := s.chain.Append()
	r2 := s.chain.Append()

	removed := s.chain.Reset()

	s.Equal([]RecordID{r1, r2}, removed)
	s.True(s.chain.IsEmpty())
}

func (s *ChainSuite) TestRestore() {
	records := []Record{{ID: "a", SigningDate: "01/02/2024", WasFurtherAmended: true}, {ID: "b"}}
	c := Restore(records)
	records[0].SigningDate = "changed"

	got := c.Records()
	s.Equal("01/02/2024", got[0].SigningDate)
	s.Equal(RecordID("b"), got[1].ID)
}
