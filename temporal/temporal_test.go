package temporal

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

var (
	t1 = time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2021, 4, 1, 9, 0, 0, 0, time.UTC)
	t3 = time.Date(2021, 5, 1, 9, 0, 0, 0, time.UTC)
	t4 = time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)
)

func newCustomer(g *GomegaWithT) *Table {
	tab, err := NewTable([]string{"Id", "Name", "Email", "Notes"}, []string{"Id"})
	g.Expect(err).ToNot(HaveOccurred())
	return tab
}

func TestMergeInsertsUpdatesAndDeletes(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)

	res, err := tab.Merge(t1, []Row{{1, "A", "a@x", nil}, {2, "C", "c@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res).To(Equal(MergeResult{Inserted: 2}))

	res, err = tab.Merge(t2, []Row{{1, "B", "a@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res).To(Equal(MergeResult{Updated: 1, Deleted: 1}))

	cur := tab.Current()
	g.Expect(cur).To(HaveLen(1))
	g.Expect(cur[0].Row).To(Equal(Row{1, "B", "a@x", nil}))
	g.Expect(cur[0].ValidFrom).To(Equal(t2))
	g.Expect(cur[0].ValidTo).To(Equal(MaxValidTo))

	g.Expect(tab.AsOf(t2.Add(-time.Second))).To(HaveLen(2))
	closed := tab.AsOf(t1)
	g.Expect(closed).To(ContainElement(Version{Row: Row{2, "C", "c@x", nil}, ValidFrom: t1, ValidTo: t2}))
	g.Expect(tab.All()).To(HaveLen(3))
}

func TestMergeIsIdempotent(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	staging := []Row{{1, "A", nil, nil}, {2, "C", "c@x", "n"}}

	_, err := tab.Merge(t1, staging)
	g.Expect(err).ToNot(HaveOccurred())
	before := tab.Current()

	res, err := tab.Merge(t2, staging)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res).To(Equal(MergeResult{}))
	g.Expect(tab.Current()).To(Equal(before))
	g.Expect(tab.All()).To(HaveLen(2))
}

func TestMergeRejectsBadStaging(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	_, err := tab.Merge(t1, []Row{{1, "A"}})
	g.Expect(err).To(HaveOccurred())
	_, err = tab.Merge(t1, []Row{{1, "A", nil, nil}, {1, "B", nil, nil}})
	g.Expect(err).To(HaveOccurred())
	g.Expect(tab.Current()).To(BeEmpty())
}

func TestNewTableNeedsKnownKey(t *testing.T) {
	g := NewGomegaWithT(t)
	_, err := NewTable([]string{"A"}, nil)
	g.Expect(err).To(HaveOccurred())
	_, err = NewTable([]string{"A"}, []string{"B"})
	g.Expect(err).To(HaveOccurred())
}

func TestBackdateIsIdempotent(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	anchor := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	g.Expect(tab.Backdate(anchor)).To(BeFalse(), "empty table is left alone")

	_, err := tab.Merge(t1, []Row{{1, "A", "a@x", nil}, {2, "C", "c@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(tab.Backdate(anchor)).To(BeTrue())
	for _, v := range tab.Current() {
		g.Expect(v.ValidFrom).To(Equal(anchor))
	}
	g.Expect(tab.Backdate(anchor)).To(BeFalse())

	_, err = tab.Merge(t2, []Row{{1, "B", "a@x", nil}, {2, "C", "c@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(tab.Backdate(anchor)).To(BeFalse())
	min, ok := tab.MinValidFrom()
	g.Expect(ok).To(BeTrue())
	g.Expect(min).To(Equal(anchor))
	cur := tab.Current()
	g.Expect(cur[0].ValidFrom).To(Equal(t2))
	g.Expect(cur[1].ValidFrom).To(Equal(anchor))
}

func TestSnapshotAsOfIsDeterministic(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	_, err := tab.Merge(t1, []Row{{1, "A", "a@x", nil}, {2, "C", nil, nil}})
	g.Expect(err).ToNot(HaveOccurred())
	_, err = tab.Merge(t2, []Row{{1, "B", "a@x", nil}, {2, "C", nil, nil}, {3, "D", "d@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())

	first, err := SnapshotAsOf(tab, []string{"Name", "Email"}, t3)
	g.Expect(err).ToNot(HaveOccurred())
	second, err := SnapshotAsOf(tab, []string{"Name", "Email"}, t3)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(second).To(Equal(first))
	g.Expect(first).To(HaveLen(3))
	g.Expect(first[0].ID).To(Equal(1))
	g.Expect(first[0].ValidFrom.IsZero()).To(BeTrue())

	var names []interface{}
	for _, r := range first {
		names = append(names, r.Row[0])
	}
	g.Expect(names).To(ConsistOf("B", "C", "D"))

	_, err = SnapshotAsOf(tab, []string{"Phone"}, t3)
	g.Expect(err).To(HaveOccurred())
}

func TestCollapseEpisodesMergesVersionsOfTheSameTuple(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	for i, at := range []time.Time{t1, t2, t3} {
		_, err := tab.Merge(at, []Row{{1, "A", "a@x", i}})
		g.Expect(err).ToNot(HaveOccurred())
	}
	g.Expect(tab.All()).To(HaveLen(3))

	eps, err := CollapseEpisodes(tab, []string{"Name", "Email"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(eps).To(Equal([]DimensionRow{{ID: 1, Row: Row{"A", "a@x"}, ValidFrom: t1, ValidTo: MaxValidTo}}))
}

func TestCollapseEpisodesCustomer(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	_, err := tab.Merge(t1, []Row{{1, "A", "a@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())
	_, err = tab.Merge(t2, []Row{{1, "B", "a@x", nil}})
	g.Expect(err).ToNot(HaveOccurred())

	eps, err := CollapseEpisodes(tab, []string{"Name", "Email"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(eps).To(Equal([]DimensionRow{
		{ID: 1, Row: Row{"A", "a@x"}, ValidFrom: t1, ValidTo: t2},
		{ID: 2, Row: Row{"B", "a@x"}, ValidFrom: t2, ValidTo: MaxValidTo},
	}))
}

func TestCollapseEpisodesTieBreak(t *testing.T) {
	g := NewGomegaWithT(t)
	tab := newCustomer(g)
	_, err := tab.Merge(t1, []Row{{2, "Z", nil, nil}, {1, "M", nil, nil}})
	g.Expect(err).ToNot(HaveOccurred())
	_, err = tab.Merge(t2, []Row{{3, "A", nil, nil}})
	g.Expect(err).ToNot(HaveOccurred())
	_, err = tab.Merge(t4, []Row{})
	g.Expect(err).ToNot(HaveOccurred())

	eps, err := CollapseEpisodes(tab, []string{"Name"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(eps).To(HaveLen(3))
	// Z and M both end at t2 and start at t1 so the tuple decides.
	g.Expect(eps[0].Row).To(Equal(Row{"M"}))
	g.Expect(eps[1].Row).To(Equal(Row{"Z"}))
	g.Expect(eps[2].Row).To(Equal(Row{"A"}))
	g.Expect(eps[2].ValidTo).To(Equal(t4))
}
