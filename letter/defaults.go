package letter

import "time"

// Default returns the record a new session starts with.
func Default(now time.Time) OfferRecord {
	return OfferRecord{
		Location:     "Yogyakarta",
		Date:         FormatLocalDate(now),
		Recipient:    "Bapak ......",
		Subject:      "Penawaran Pembuatan Karoseri",
		OfferSubject: "pembuatan karoseri body mikrobus",
		Price:        "138.000.000",
		PriceInWords: "Seratus Tiga Puluh Delapan Juta Rupiah",
		Signatory:    "Anton Gunanjati",
		Specification: NewSpecification(
			SpecItem{"modelBody", "JB5"},
			SpecItem{"rangka", "Pipa Baja"},
			SpecItem{"kacaDepan", "Laminated 2pcs"},
			SpecItem{"kacaSamping", "Tempered Rayban Geser Bawah"},
			SpecItem{"kacaBelakang", "Tempered Rayban"},
			SpecItem{"pintuDepan", "Standar"},
			SpecItem{"pintuBelakang", "Lipat"},
			SpecItem{"lantai", "Plat Bordes"},
			SpecItem{"bangku", "Standar Karoseri"},
			SpecItem{"bangkuPenumpang", "17 Seats"},
			SpecItem{"lampuDepan", "JB5"},
			SpecItem{"lampuBelakang", "JB5"},
			SpecItem{"wiper", "Mercy"},
			SpecItem{"interior", "Cat + ACP"},
			SpecItem{"plafon", "Dum Depan ABS"},
			SpecItem{"bagasiPlafon", "Profile"},
			SpecItem{"audioVisual", "DVD, TV, Power, Speaker"},
			SpecItem{"wildop", "SR Chrome"},
			SpecItem{"cat", "Sesuai Permintaan"},
		),
	}
}
