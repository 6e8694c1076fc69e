package tier_test

import (
	"math"
	"testing"

	"github.com/okian/bonus/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTable() tier.Table {
	return tier.NewTable([]tier.Tier{
		{Min: 0, Max: tier.Float(1000), Rate: 0.05, Label: "Starter"},
		{Min: 1000, Rate: 0.10, Cap: tier.Float(2000), Label: "Plus"},
	})
}

func TestTierContains(t *testing.T) {
	Convey("Given a tier with bounds [100, 500)", t, func() {
		tr := tier.Tier{Min: 100, Max: tier.Float(500), Rate: 0.1}

		Convey("Then the lower bound is inclusive", func() {
			So(tr.Contains(100), ShouldBeTrue)
		})

		Convey("And the upper bound is exclusive", func() {
			So(tr.Contains(500), ShouldBeFalse)
			So(tr.Contains(499.99), ShouldBeTrue)
		})

		Convey("And amounts below min are rejected", func() {
			So(tr.Contains(99.99), ShouldBeFalse)
		})
	})

	Convey("Given a tier without max", t, func() {
		tr := tier.Tier{Min: 10}

		Convey("Then it is unbounded above", func() {
			So(tr.Contains(math.MaxFloat64), ShouldBeTrue)
			So(tr.HasCap(), ShouldBeFalse)
		})
	})
}

func TestTableFind(t *testing.T) {
	Convey("Given the sample table", t, func() {
		table := sampleTable()

		Convey("When the amount sits in the first tier", func() {
			got, ok := table.Find(500)
			So(ok, ShouldBeTrue)
			So(got.Label, ShouldEqual, "Starter")
		})

		Convey("When the amount equals the first tier max", func() {
			got, ok := table.Find(1000)

			Convey("Then the next tier is selected", func() {
				So(ok, ShouldBeTrue)
				So(got.Label, ShouldEqual, "Plus")
			})
		})

		Convey("When the amount is below every min", func() {
			_, ok := table.Find(-1)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given overlapping tiers declared out of order", t, func() {
		table := tier.NewTable([]tier.Tier{
			{Min: 5000, Rate: 0.2, Label: "Gold"},
			{Min: 0, Rate: 0.05, Label: "Base"},
			{Min: 1000, Rate: 0.1, Label: "Silver"},
		})

		Convey("Then the greatest min wins", func() {
			got, ok := table.Find(7000)
			So(ok, ShouldBeTrue)
			So(got.Label, ShouldEqual, "Gold")

			got, ok = table.Find(1500)
			So(ok, ShouldBeTrue)
			So(got.Label, ShouldEqual, "Silver")
		})
	})

	Convey("Given two tiers with equal min", t, func() {
		table := tier.NewTable([]tier.Tier{
			{Min: 0, Rate: 0.05, Label: "First"},
			{Min: 0, Rate: 0.5, Label: "Second"},
		})

		Convey("Then the earlier declaration wins", func() {
			got, ok := table.Find(10)
			So(ok, ShouldBeTrue)
			So(got.Label, ShouldEqual, "First")
		})
	})

	Convey("Given an empty table", t, func() {
		var table tier.Table

		Convey("Then nothing matches", func() {
			_, ok := table.Find(100)
			So(ok, ShouldBeFalse)
			So(table.Empty(), ShouldBeTrue)
			So(table.Len(), ShouldEqual, 0)
		})
	})
}

func TestTableImmutability(t *testing.T) {
	Convey("Given a table built from a slice", t, func() {
		src := []tier.Tier{{Min: 0, Max: tier.Float(100), Rate: 0.1, Label: "A"}}
		table := tier.NewTable(src)

		Convey("When the source slice is mutated", func() {
			src[0].Label = "mutated"
			*src[0].Max = 1

			Convey("Then the table is unaffected", func() {
				got, ok := table.Find(50)
				So(ok, ShouldBeTrue)
				So(got.Label, ShouldEqual, "A")
				So(*got.Max, ShouldEqual, 100)
			})
		})

		Convey("When a returned tier is mutated", func() {
			tiers := table.Tiers()
			*tiers[0].Max = 5

			Convey("Then the table is unaffected", func() {
				So(*table.Tiers()[0].Max, ShouldEqual, 100)
			})
		})
	})
}
