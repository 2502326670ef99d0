// Package faq provides the built-in fallback answers served by the AI
// assistant when the inference backend is unreachable. Matching is a
// deterministic substring lookup over a priority-ordered keyword table;
// the first entry with any matching keyword wins.
package faq

import "strings"

// entry pairs a keyword list with the key of the answer it selects.
// Declaration order is the tie-break policy: earlier entries win.
type entry struct {
	keywords []string
	answer   string
}

var keywordTable = []entry{
	{[]string{"what are ioc", "what is an ioc", "ioc types", "types of ioc", "indicator of compromise", "what is ioc"}, "what are iocs"},
	{[]string{"threat intelligence", "what is ti", "what is threat intel"}, "what is threat intelligence"},
	{[]string{"how does sentinel", "how sentinel works", "sentinel features", "about sentinel", "what is sentinel"}, "how does sentinel work"},
	{[]string{"mitre att", "mitre attack", "attack framework", "what is att&ck", "attack matrix"}, "what is mitre attack"},
	{[]string{"investigate", "investigation", "how to investigate", "analyze ioc", "triage"}, "how to investigate an ioc"},
	{[]string{"threat feed", "what are feeds", "feed sources", "otx", "abuseipdb"}, "what are threat feeds"},
	{[]string{"threat scor", "scoring", "score meaning", "score range", "what does the score"}, "explain threat scoring"},
	{[]string{"incident response", "ir steps", "respond to alert", "critical alert", "playbook"}, "incident response steps"},
	{[]string{"c2", "c&c", "command and control", "command & control", "cobalt strike", "beacon"}, "what is a c2 server"},
}

// Match returns the canned answer for a free-text question. Input is
// normalized (lowercased, punctuation stripped, trimmed) before matching.
// Unmatched or empty input falls through to the default topic listing.
func Match(input string) string {
	normalized := normalize(input)

	for _, e := range keywordTable {
		for _, kw := range e.keywords {
			if strings.Contains(normalized, kw) {
				return answers[e.answer]
			}
		}
	}

	return answers["default"]
}

// DefaultAnswer returns the topic listing served for unmatched questions.
func DefaultAnswer() string {
	return answers["default"]
}

func normalize(input string) string {
	s := strings.ToLower(input)
	s = strings.NewReplacer("?", "", "!", "", ".", "", ",", "").Replace(s)
	return strings.TrimSpace(s)
}

var answers = map[string]string{
	"what are iocs": `Indicators of Compromise (IOCs) are pieces of forensic data that identify potentially malicious activity on a system or network. Common types include:

- IP Addresses — Malicious IPs associated with C2 servers, botnets, or scanners
- Domains — Known malicious domains used for phishing, malware delivery, or C2
- File Hashes (MD5/SHA256) — Fingerprints of known malware samples
- URLs — Specific malicious URLs hosting exploits or phishing pages
- Email Addresses — Addresses tied to phishing campaigns or threat actors
- CVEs — Known software vulnerabilities being actively exploited

IOCs are the foundation of threat intelligence and are used to detect, block, and investigate threats across your environment.`,

	"what is threat intelligence": `Threat Intelligence (TI) is evidence-based knowledge about existing or emerging threats to an organization's assets. It includes:

- Strategic TI — High-level trends for executives (who is attacking, why)
- Tactical TI — TTPs (Tactics, Techniques & Procedures) used by threat actors
- Operational TI — Details about specific campaigns and attack timelines
- Technical TI — IOCs like IPs, hashes, and domains for automated detection

SENTINEL aggregates technical threat intelligence from multiple feeds, enriches IOCs with contextual data, and provides scoring to help analysts prioritize threats effectively.`,

	"how does sentinel work": `SENTINEL is a Threat Intelligence Platform (TIP) that operates in several stages:

1. INGESTION — Collects IOCs from multiple threat feeds (OTX, AbuseIPDB, PhishTank, etc.)
2. ENRICHMENT — Enriches IOCs with WHOIS, DNS, GeoIP, and reputation data
3. SCORING — Assigns threat scores (0-100) based on multiple factors
4. CORRELATION — Links related IOCs and maps to MITRE ATT&CK techniques
5. REPORTING — Generates daily briefs, custom reports, and AI-powered analysis

Key features:
- Real-time feed synchronization with configurable intervals
- Multi-source enrichment for comprehensive context
- MITRE ATT&CK mapping for TTP tracking
- AI-powered analysis and chat assistance
- Interactive dashboard with geo-mapping and trend analysis`,

	"what is mitre attack": `MITRE ATT&CK (Adversarial Tactics, Techniques, and Common Knowledge) is a globally-recognized knowledge base of adversary behavior. It categorizes attacks into:

TACTICS (the "why"):
- Reconnaissance, Resource Development, Initial Access
- Execution, Persistence, Privilege Escalation
- Defense Evasion, Credential Access, Discovery
- Lateral Movement, Collection, C2, Exfiltration, Impact

TECHNIQUES (the "how"):
Each tactic contains specific techniques (e.g., T1566 Phishing under Initial Access).

In SENTINEL, IOCs are mapped to ATT&CK techniques to help analysts understand:
- What stage of an attack an IOC relates to
- What TTPs a threat actor is using
- Where to focus defensive efforts

Use the ATT&CK Map page to visualize technique coverage across your IOC data.`,

	"how to investigate an ioc": `Step-by-step IOC investigation workflow in SENTINEL:

1. IDENTIFY — Find the IOC via search or alert triage
2. ENRICH — Click "Enrich" to pull WHOIS, DNS, GeoIP, and reputation data
3. SCORE — Review the threat score (0-25 Low, 26-50 Medium, 51-75 High, 76-100 Critical)
4. CORRELATE — Check the Relationships tab for linked IOCs
5. CONTEXTUALIZE — Review sources, tags, and MITRE ATT&CK mappings
6. AI ANALYSIS — Use the AI Analysis tab for automated threat assessment
7. DECIDE — Based on findings, take action:
   - Block: Add to firewall/proxy blocklist
   - Monitor: Set up alerts for future sightings
   - Escalate: Create a report for the SOC team
   - Dismiss: Mark as false positive if benign

Pro tips:
- Check sighting count and first/last seen dates for recency
- Cross-reference multiple enrichment sources
- Look for related IOCs that may indicate a broader campaign`,

	"what are threat feeds": `Threat feeds are continuous streams of IOC data from various sources. SENTINEL supports multiple feed types:

PUBLIC FEEDS (Free):
- AlienVault OTX — Community-driven threat data
- Abuse.ch — Malware and botnet tracking (URLhaus, MalwareBazaar)
- PhishTank — Community-verified phishing URLs
- Emerging Threats — Snort/Suricata rule-based IOCs

COMMERCIAL FEEDS (API key required):
- VirusTotal — Multi-engine malware scanning
- AbuseIPDB — IP reputation database
- Shodan — Internet-connected device intelligence

CUSTOM FEEDS:
- CSV/STIX imports for internal or third-party data

Feeds sync automatically at configurable intervals. Check the Threat Feeds page to manage sources, trigger manual syncs, and monitor feed health.`,

	"explain threat scoring": `SENTINEL uses a 0-100 threat scoring system:

SCORE RANGES:
- 0-25   LOW      — Minimal risk, likely benign or low-confidence
- 26-50  MEDIUM   — Moderate risk, warrants monitoring
- 51-75  HIGH     — Significant risk, should be investigated
- 76-100 CRITICAL — Severe risk, immediate action recommended

SCORING FACTORS:
- Source reputation: Higher-confidence feeds increase the score
- Sighting count: Multiple independent sightings boost severity
- Recency: Recently active IOCs score higher
- Enrichment data: Reputation checks (AbuseIPDB, VT) contribute
- Context: Associated malware families or APT groups

WHAT TO DO:
- Critical (76+): Immediate blocking + incident investigation
- High (51-75): Priority investigation within 4 hours
- Medium (26-50): Investigate within 24 hours
- Low (0-25): Monitor, review during routine analysis`,

	"incident response steps": `Key Incident Response steps when a critical IOC triggers an alert:

1. DETECTION & TRIAGE
   - Verify the alert is not a false positive
   - Check the IOC's threat score, sources, and enrichment data
   - Determine affected systems and scope

2. CONTAINMENT
   - Block malicious IPs/domains at firewall and proxy
   - Isolate affected endpoints from the network
   - Disable compromised user accounts

3. INVESTIGATION
   - Correlate the IOC with related indicators in SENTINEL
   - Review MITRE ATT&CK mappings to understand the attack stage
   - Check logs (SIEM, EDR, proxy) for additional activity
   - Use AI Analysis for automated threat assessment

4. ERADICATION
   - Remove malware and persistence mechanisms
   - Patch exploited vulnerabilities
   - Reset compromised credentials

5. RECOVERY
   - Restore systems from clean backups
   - Re-enable network access gradually
   - Monitor for re-infection

6. POST-INCIDENT
   - Document findings in a report (use SENTINEL's report generator)
   - Update detection rules and blocklists
   - Conduct lessons learned with the team`,

	"what is a c2 server": `A Command and Control (C2) server is infrastructure used by attackers to communicate with compromised systems (implants/agents). Key characteristics:

PURPOSE:
- Send commands to malware on victim machines
- Exfiltrate stolen data
- Deploy additional payloads
- Maintain persistent access

DETECTION IN SENTINEL:
- IP IOCs with high threat scores from multiple feeds
- Domains with short lifespans or DGA-like patterns
- URLs matching known C2 framework paths (Cobalt Strike, Metasploit, etc.)
- Beaconing patterns visible in network logs

COMMON C2 FRAMEWORKS:
- Cobalt Strike — Most widely used by APTs and red teams
- Metasploit — Open-source penetration testing framework
- Sliver — Modern open-source C2
- Brute Ratel — Newer, designed to evade EDR

RESPONSE:
- Block C2 IPs/domains immediately at network perimeter
- Search for beaconing activity in your environment
- Investigate all hosts that communicated with the C2
- Check for lateral movement from compromised hosts`,

	"default": `I'm SENTINEL AI, your threat intelligence assistant. Here are some topics I can help with:

- "What are IOCs?" — Learn about Indicators of Compromise
- "How does SENTINEL work?" — Platform overview and features
- "What is MITRE ATT&CK?" — Attack framework explained
- "How to investigate an IOC" — Step-by-step investigation workflow
- "What are threat feeds?" — Understanding threat intelligence feeds
- "Explain threat scoring" — How SENTINEL scores threats (0-100)
- "Incident response steps" — IR playbook for critical alerts
- "What is a C2 server?" — Command & Control infrastructure
- "What is threat intelligence?" — TI fundamentals

Type any question about cybersecurity, threat intelligence, or SENTINEL platform features!

Note: For AI-powered responses, ensure the inference backend is configured.`,
}
