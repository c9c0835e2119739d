package image

// roomAnalysisPrompt instructs the vision model to break a room photo
// down precisely enough for builders to reconstruct it.
const roomAnalysisPrompt = `
Analyze this image and provide a highly detailed breakdown of the room for reconstruction by builders. Be very detailed about the room structure.

1. Walls
    Relative to where the picture was taken:
        How many walls are there in the picture?
        What are the dimensions of the walls?
        How far from the camera is the rear wall?
        How are the walls in relation to each other?
        How are the walls in relation to the floor and ceiling?

2. Doors & Entryways
    Number of doors per wall (indicate which walls contain doors).
    Which wall is the door in?
    How far from the wall corner is each door placed?
    Exact placement of each door: X, Y coordinates relative to the floor and nearest wall corner.
    Door dimensions: height, width, and thickness.
    Door types: wooden, glass, metal, sliding, French doors, panel doors, two-sided doors, etc.
    Number of door panels per door: single-pane, double-pane, multi-section, etc.
    Door frame details: material, color, and thickness.
    Door swing direction: inward or outward, left or right.
    Door hardware: handles, locks, hinges, and additional design features.

3. Windows
    Number of windows per wall (indicate which walls contain windows).
    How many walls have windows?
    Which wall is each window in?
    How far from the wall corner is each window placed?
    Exact placement of each window per wall: X, Y coordinates relative to the floor and nearest wall corner.
    Window dimensions: height, width, and depth.
    Window types: single-hung, double-hung, casement, bay, sliding, fixed, etc.
    Number of window panes per window.
    Frame material and color.
    Window hardware: locks, handles, and any additional features.

4. Fixtures & Built-in Features
    Built-in shelving, cabinets, or storage: placement, dimensions, and materials.
    Fireplaces or wall-mounted appliances: location and dimensions.

Ensure that the output response is structured, precise, and comprehensive, making it easy for builders to replicate the room exactly as it appears in the image.
`

// analysisMaxTokens bounds the vision response length.
const analysisMaxTokens = 700
