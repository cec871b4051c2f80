package services

import "testing"

func TestServiceGachaPicksFromTable(t *testing.T) {
	gacha, err := NewServiceGacha(drawPrizeChoices())
	if err != nil {
		t.Fatal(err)
	}

	valid := map[int64]bool{150: true, 160: true, 175: true, 190: true, 200: true}
	for i := 0; i < 100; i++ {
		if prize := gacha.Pick(); !valid[prize] {
			t.Fatalf("Pick() = %d, not in the prize table", prize)
		}
	}
}
