package crypto

//
// ----------------------------- APIs ONLY for TESTs ----------------------------- //
//
// WARNING: The following APIs are intended only for unit test case for better repeatibility.
//          They should NOT be used in the production code.

// TEST_GenerateKeyPairWithSeed deterministically derives a private/public key pair from the given seed string
func TEST_GenerateKeyPairWithSeed(seed string) (*PrivateKey, *PublicKey, error) {
	sk, err := PrivateKeyFromBytes(Keccak256([]byte(seed)))
	if err != nil {
		return nil, nil, err
	}
	return sk, sk.PublicKey(), nil
}
