package main

import (
	"errors"

	"qrpay-certifier/internal/core/config"
	"qrpay-certifier/internal/core/keys"
)

const keycheckMessage = "test_message_for_signature_verification"

// runKeycheck verifies that the configured key files parse and that the
// merchant key signs. The two keys are not a pair: the merchant signs with
// its private key, the gateway public key only verifies gateway answers.
func runKeycheck(con *console, gw config.GatewayConfig) error {
	con.section("RSA key check")

	var failed bool

	con.printf("\n[1] Merchant private key (%s)\n", gw.PrivateKeyFile)
	if err := checkPrivateKey(con, gw.PrivateKeyFile); err != nil {
		con.printf("    FAIL: %v\n", err)
		failed = true
	}

	con.printf("\n[2] Gateway public key (%s)\n", gw.PublicKeyFile)
	if err := checkPublicKey(con, gw.PublicKeyFile); err != nil {
		con.printf("    FAIL: %v\n", err)
		failed = true
	}

	if failed {
		return errors.New("key check failed")
	}
	con.printf("\nKeys are configured correctly.\n")
	return nil
}

func checkPrivateKey(con *console, path string) error {
	privatePEM, err := keys.Load(path, keys.KindPrivate)
	if err != nil {
		return err
	}

	signer, err := keys.NewSigner(privatePEM)
	if err != nil {
		return err
	}

	sig, err := signer.Sign([]byte(keycheckMessage))
	if err != nil {
		return err
	}
	con.printf("    signature: %s...\n", sig[:min(len(sig), 32)])

	publicPEM, err := signer.PublicPEM()
	if err != nil {
		return err
	}
	if err := keys.Verify(publicPEM, []byte(keycheckMessage), sig); err != nil {
		return err
	}

	con.printf("    OK: signs and verifies against its own public half\n")
	return nil
}

func checkPublicKey(con *console, path string) error {
	publicPEM, err := keys.Load(path, keys.KindPublic)
	if err != nil {
		return err
	}

	pub, err := keys.ParsePublicKey(publicPEM)
	if err != nil {
		return err
	}

	con.printf("    OK: %d-bit RSA key\n", pub.N.BitLen())
	return nil
}
