package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/safeeats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRestaurant_Decode(t *testing.T) {
	Convey("Given a search result payload", t, func() {
		Convey("When the id is a number and the score is present", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{
				"id": 42, "name": "Joe's", "borough": "Brooklyn",
				"cuisine_description": "Pizza", "star_rating": 3,
				"latest_inspection": {"date": "2024-05-01", "grade": "A", "score": 12}
			}`), &r)

			Convey("Then it should decode every field", func() {
				So(err, ShouldBeNil)
				So(r.ID, ShouldEqual, model.ID("42"))
				So(r.Name, ShouldEqual, "Joe's")
				So(r.Grade(), ShouldEqual, "A")
				score, ok := r.Score()
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 12)
				So(r.Stars(), ShouldEqual, 3)
			})
		})

		Convey("When the id is a string and the score is null", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":"abc-1","name":"X","latest_inspection":{"grade":"","score":null}}`), &r)

			Convey("Then the score should be absent", func() {
				So(err, ShouldBeNil)
				So(r.ID.String(), ShouldEqual, "abc-1")
				_, ok := r.Score()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the score is malformed", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":1,"name":"X","latest_inspection":{"score":"n/a"}}`), &r)

			Convey("Then decoding should still succeed with an unknown score", func() {
				So(err, ShouldBeNil)
				_, ok := r.Score()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the score is a numeric string", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":1,"name":"X","latest_inspection":{"score":" 27 "}}`), &r)

			Convey("Then it should be parsed", func() {
				So(err, ShouldBeNil)
				score, ok := r.Score()
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 27)
			})
		})

		Convey("When there is no latest inspection", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":7,"name":"Y"}`), &r)

			Convey("Then grade and score should be empty", func() {
				So(err, ShouldBeNil)
				So(r.Grade(), ShouldEqual, "")
				_, ok := r.Score()
				So(ok, ShouldBeFalse)
				So(r.Stars(), ShouldEqual, 0)
			})
		})

		Convey("When the grade is not a string", func() {
			for _, body := range []string{
				`{"id":1,"name":"X","latest_inspection":{"grade":1,"score":10}}`,
				`{"id":1,"name":"X","latest_inspection":{"grade":false,"score":10}}`,
				`{"id":1,"name":"X","latest_inspection":{"grade":{"letter":"A"},"score":10}}`,
			} {
				var r model.Restaurant
				So(json.Unmarshal([]byte(body), &r), ShouldBeNil)
				So(r.Grade(), ShouldEqual, "")
				score, ok := r.Score()
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 10)
			}
		})

		Convey("When the latest inspection is not an object", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":1,"name":"X","latest_inspection":"n/a"}`), &r)

			Convey("Then it should decode as an empty inspection", func() {
				So(err, ShouldBeNil)
				So(r.LatestInspection.Empty(), ShouldBeTrue)
				So(r.Grade(), ShouldEqual, "")
			})
		})

		Convey("When numeric ids use different spellings", func() {
			var a, b, c model.ID
			So(json.Unmarshal([]byte(`1`), &a), ShouldBeNil)
			So(json.Unmarshal([]byte(`1.0`), &b), ShouldBeNil)
			So(json.Unmarshal([]byte(`1e0`), &c), ShouldBeNil)
			So(a, ShouldEqual, model.ID("1"))
			So(b, ShouldEqual, a)
			So(c, ShouldEqual, a)
		})

		Convey("When the id is not a string or number", func() {
			var r model.Restaurant
			err := json.Unmarshal([]byte(`{"id":true,"name":"Y"}`), &r)

			Convey("Then decoding should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestRestaurant_Stars(t *testing.T) {
	Convey("Given restaurants with different rating signals", t, func() {
		Convey("When only display_value is set", func() {
			r := model.Restaurant{DisplayValue: "2.6"}
			So(r.Stars(), ShouldEqual, 3)
		})

		Convey("When star_rating and display_value disagree", func() {
			r := model.Restaurant{StarRating: 1.0, DisplayValue: 4.0}
			So(r.Stars(), ShouldEqual, 1)
		})

		Convey("When display_value is a letter", func() {
			r := model.Restaurant{DisplayValue: "A"}
			So(r.Stars(), ShouldEqual, 0)
		})
	})
}

func TestDetail_Decode(t *testing.T) {
	Convey("Given a detail payload", t, func() {
		var d model.Detail
		err := json.Unmarshal([]byte(`{
			"id": 9, "name": "Diner", "star_rating": 4,
			"inspections": [
				{"date": "2024-03-01", "grade": "B", "score": 18},
				{"date": "2023-01-10", "grade": "A", "score": 7}
			]
		}`), &d)

		Convey("Then the embedded record and the ordered history should decode", func() {
			So(err, ShouldBeNil)
			So(d.ID, ShouldEqual, model.ID("9"))
			So(d.Stars(), ShouldEqual, 4)
			So(d.Inspections, ShouldHaveLength, 2)
			So(d.Inspections[0].Grade, ShouldEqual, "B")
			So(d.Inspections[1].Date, ShouldEqual, "2023-01-10")
		})
	})
}

func TestOptionalInt_Marshal(t *testing.T) {
	Convey("Given optional integers", t, func() {
		absent, err := json.Marshal(model.OptionalInt{})
		So(err, ShouldBeNil)
		So(string(absent), ShouldEqual, "null")

		present, err := json.Marshal(model.Some(13))
		So(err, ShouldBeNil)
		So(string(present), ShouldEqual, "13")
	})
}

func TestRestaurant_Clone(t *testing.T) {
	Convey("Given a result with an inspection", t, func() {
		r := model.Restaurant{ID: "1", Name: "A", LatestInspection: &model.InspectionSummary{Grade: "A"}}

		Convey("When it is cloned and the clone is edited", func() {
			cp := r.Clone()
			cp.LatestInspection.Grade = "C"

			Convey("Then the original should be unchanged", func() {
				So(r.Grade(), ShouldEqual, "A")
			})
		})

		Convey("When a detail is cloned", func() {
			d := &model.Detail{Restaurant: r, Inspections: []model.InspectionSummary{{Grade: "B"}}}
			cp := d.Clone()
			cp.Inspections[0].Grade = "C"
			cp.LatestInspection.Grade = "C"

			So(d.Inspections[0].Grade, ShouldEqual, "B")
			So(d.Grade(), ShouldEqual, "A")
		})

		Convey("When a nil list is cloned", func() {
			So(model.CloneAll(nil), ShouldNotBeNil)
			So(model.CloneAll(nil), ShouldBeEmpty)
		})
	})
}
