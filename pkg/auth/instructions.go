package auth

import (
	"fmt"
	"strings"
)

// ShowTokenGuide displays step-by-step instructions for obtaining an API token
func ShowTokenGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🔑 ROBOTEVENTS API TOKEN GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs a RobotEvents API bearer token to read competition data.")
	fmt.Println("Tokens are free and issued per account:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Sign in to RobotEvents")
	fmt.Println("   - Go to https://www.robotevents.com")
	fmt.Println("   - Log in or create an account")
	fmt.Println()

	fmt.Println("📨 STEP 2: Request API access")
	fmt.Println("   - Open https://www.robotevents.com/api/v2")
	fmt.Println("   - Click 'Request Access' and fill in the short form")
	fmt.Println("   - Access is usually granted within a day")
	fmt.Println()

	fmt.Println("🔧 STEP 3: Create a token")
	fmt.Println("   - Once approved, open your account's 'API Keys' page")
	fmt.Println("   - Create a new access token and copy it immediately")
	fmt.Println("   - The token is a long JWT string, shown only once")
	fmt.Println()

	fmt.Println("💾 STEP 4: Store it")
	fmt.Println("   - Run: vexrank auth login")
	fmt.Println("   - Or export VEXRANK_TOKEN in your shell or .env file")
	fmt.Println()

	fmt.Println("⚠️  SECURITY NOTES:")
	fmt.Println("   • The token acts as your RobotEvents identity, never share it")
	fmt.Println("   • This tool stores it in your system keychain when available,")
	fmt.Println("     falling back to an encrypted file")
	fmt.Println("   • Revoke compromised tokens from the API Keys page")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickTokenGuide shows a condensed version for experienced users
func ShowQuickTokenGuide() {
	fmt.Println("\n🔑 Quick Guide: robotevents.com → API v2 → Request Access → API Keys → new token")
	fmt.Println("   Then: vexrank auth login  (or export VEXRANK_TOKEN=...)")
	fmt.Println("   Type 'help' for detailed instructions")
}
