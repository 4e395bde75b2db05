package nse

// band returns the open interest sum for one side within band strike
// steps of the at-the-money strike.
func (s *Snapshot) bandOI(band int, side string) float64 {
	total := 0.0
	for _, strike := range s.Strikes {
		if strike.Side == side && abs(strike.Strike-s.ATM) <= band*s.Step {
			total += strike.OI
		}
	}
	return total
}

// PCR is the put-call ratio of open interest within band steps of the
// at-the-money strike. Zero when no call OI is present.
func (s *Snapshot) PCR(band int) float64 {
	ce := s.bandOI(band, "CE")
	if ce <= 0 {
		return 0
	}
	return s.bandOI(band, "PE") / ce
}

// Skew returns the CE/PE and PE/CE open interest ratios within band
// steps. A side with no opposing OI reads as zero.
func (s *Snapshot) Skew(band int) (ceSkew, peSkew float64) {
	ce := s.bandOI(band, "CE")
	pe := s.bandOI(band, "PE")
	if pe > 0 {
		ceSkew = ce / pe
	}
	if ce > 0 {
		peSkew = pe / ce
	}
	return ceSkew, peSkew
}

// OIVelocity compares open interest concentrated at the money against a
// wider band, per side. Values near one mean the buildup is at the
// money.
func (s *Snapshot) OIVelocity(nearBand, midBand int) (ceVel, peVel float64) {
	if midCE := s.bandOI(midBand, "CE"); midCE > 0 {
		ceVel = s.bandOI(nearBand, "CE") / midCE
	}
	if midPE := s.bandOI(midBand, "PE"); midPE > 0 {
		peVel = s.bandOI(nearBand, "PE") / midPE
	}
	return ceVel, peVel
}

// Supportive reports whether the open interest structure supports a new
// long option entry, and which side it favors. A low put-call ratio with
// call-side buildup favors calls; the mirror favors puts.
func (s *Snapshot) Supportive() (side string, ok bool) {
	pcr := s.PCR(6)
	ceSkew, peSkew := s.Skew(2)
	ceVel, peVel := s.OIVelocity(1, 3)

	switch {
	case pcr > 0 && pcr < 0.8 && peSkew < 0.9 && ceVel > 0.6:
		return "CE", true
	case pcr > 1.2 && ceSkew < 0.9 && peVel > 0.6:
		return "PE", true
	}
	return "", false
}
